package tokenizer

import (
	"errors"

	"github.com/temirov/lctx/internal/utils"
)

// CountResult reports a token estimate. Counted is false when the input was
// binary and no estimate applies.
type CountResult struct {
	Tokens  int
	Counted bool
}

var errNilCounter = errors.New("nil tokenizer counter")

// CountBytes estimates the token count of raw data using tokenCounter.
// Binary content is skipped rather than counted.
func CountBytes(tokenCounter Counter, data []byte) (CountResult, error) {
	if tokenCounter == nil {
		return CountResult{}, errNilCounter
	}
	if utils.IsBinary(data) {
		return CountResult{Counted: false}, nil
	}
	tokenCount, countError := tokenCounter.CountString(string(data))
	if countError != nil {
		return CountResult{}, countError
	}
	return CountResult{Tokens: tokenCount, Counted: true}, nil
}
