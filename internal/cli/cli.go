// Package cli provides the command line interface.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/lctx/internal/config"
	"github.com/temirov/lctx/internal/contextset"
	"github.com/temirov/lctx/internal/services/clipboard"
	"github.com/temirov/lctx/internal/store"
	"github.com/temirov/lctx/internal/tokenizer"
	"github.com/temirov/lctx/internal/utils"
)

const (
	ignoreFlagName       = "ignore"
	ignoreFileFlagName   = "ignore-file"
	useGitignoreFlagName = "use-gitignore"
	forceFlagName        = "force"
	absoluteFlagName     = "absolute"
	copyFlagName         = "copy"
	tokensFlagName       = "tokens"
	modelFlagName        = "model"
	outputFlagName       = "output"
	versionFlagName      = "version"
	versionTemplate      = "lctx version: %s\n"

	rootUse              = "lctx"
	rootShortDescription = "lctx command line interface"
	rootLongDescription  = `lctx maintains a persistent, named set of project files and renders the
selection as a single document for pasting into a large-language-model prompt.
Initialize a context with 'init', grow it with 'add', and emit the document
with 'generate'.`
	versionFlagDescription = "display application version"

	initUse                  = "init"
	initShortDescription     = "initialize a context in the current directory"
	destroyUse               = "destroy"
	destroyShortDescription  = "remove the context store"
	addUse                   = "add [paths...]"
	addShortDescription      = "add files or directories to the context"
	removeUse                = "remove [paths...]"
	removeShortDescription   = "remove files or directories from the context"
	resetUse                 = "reset"
	resetShortDescription    = "empty the context keeping root and ignore rules"
	listUse                  = "list"
	listShortDescription     = "list the included files"
	treeUse                  = "tree"
	treeShortDescription     = "show the included files as a directory tree"
	generateUse              = "generate"
	generateShortDescription = "render the context document"

	// initUsageExample demonstrates init command usage.
	initUsageExample = `  # Initialize using the project .gitignore plus an extra pattern
  lctx init --ignore '*.lock'

  # Initialize from a dedicated pattern file
  lctx init --ignore-file .lctxignore`
	// generateUsageExample demonstrates generate command usage.
	generateUsageExample = `  # Print the document and copy it to the clipboard
  lctx generate --copy

  # Write the document to a file and report its token count
  lctx generate --tokens --output context.md`

	ignoreFlagDescription       = "inline ignore pattern (repeatable)"
	ignoreFileFlagDescription   = "ignore pattern file (repeatable)"
	useGitignoreFlagDescription = "use the project .gitignore as a pattern source"
	forceFlagDescription        = "reinitialize an existing context"
	absoluteFlagDescription     = "list absolute paths instead of root-relative"
	copyFlagDescription         = "copy the generated document to the clipboard"
	tokensFlagDescription       = "report the document token count"
	modelFlagDescription        = "tokenizer model to use for token counting"
	outputFlagDescription       = "write the document to a file instead of stdout"
	defaultTokenizerModelName   = "gpt-4o"

	initializedMessageFormat = "Initialized empty context in %s\n"
	destroyedMessage         = "Destroyed context"
	tokenSummaryFormat       = "context: %d files, %s, %d tokens (%s)\n"
	clipboardCopyWarning     = "Warning: failed to copy document to clipboard: %v\n"
	workingDirectoryFormat   = "unable to determine working directory: %w"
	writeDocumentFormat      = "writing document to %s: %w"

	documentFilePermissions = 0o644
)

// Execute runs the lctx application.
func Execute(logger *zap.Logger) error {
	rootCommand := NewRootCommand(logger)
	return rootCommand.Execute()
}

// NewRootCommand builds the root Cobra command with every subcommand attached.
func NewRootCommand(logger *zap.Logger) *cobra.Command {
	if logger == nil {
		logger = zap.NewNop()
	}
	var showVersion bool

	rootCommand := &cobra.Command{
		Use:          rootUse,
		Short:        rootShortDescription,
		Long:         rootLongDescription,
		SilenceUsage: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			return command.Help()
		},
		PersistentPreRun: func(command *cobra.Command, arguments []string) {
			if showVersion {
				fmt.Printf(versionTemplate, utils.GetApplicationVersion())
				os.Exit(0)
			}
		},
	}
	rootCommand.PersistentFlags().BoolVar(&showVersion, versionFlagName, false, versionFlagDescription)
	rootCommand.AddCommand(
		createInitCommand(logger),
		createDestroyCommand(),
		createAddCommand(logger),
		createRemoveCommand(logger),
		createResetCommand(logger),
		createListCommand(logger),
		createTreeCommand(logger),
		createGenerateCommand(logger),
	)
	rootCommand.InitDefaultHelpCmd()
	rootCommand.InitDefaultCompletionCmd()
	return rootCommand
}

// createInitCommand returns the init subcommand.
func createInitCommand(logger *zap.Logger) *cobra.Command {
	var inlinePatterns []string
	var patternFilePaths []string
	var useGitignore bool
	var force bool

	initCommand := &cobra.Command{
		Use:     initUse,
		Short:   initShortDescription,
		Example: initUsageExample,
		Args:    cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			workingDirectory, workingDirectoryError := os.Getwd()
			if workingDirectoryError != nil {
				return fmt.Errorf(workingDirectoryFormat, workingDirectoryError)
			}
			applicationConfiguration, configurationError := config.LoadApplicationConfiguration(config.LoadOptions{WorkingDirectory: workingDirectory})
			if configurationError != nil {
				return configurationError
			}

			effectiveUseGitignore := useGitignore
			if !command.Flags().Changed(useGitignoreFlagName) && applicationConfiguration.Ignore.UseGitignore != nil {
				effectiveUseGitignore = *applicationConfiguration.Ignore.UseGitignore
			}

			var ignoreSources []contextset.IgnoreSource
			if effectiveUseGitignore {
				ignoreSources = append(ignoreSources, contextset.FileSource(filepath.Join(workingDirectory, utils.GitIgnoreFileName)))
			}
			for _, configuredPattern := range applicationConfiguration.Ignore.Patterns {
				ignoreSources = append(ignoreSources, contextset.InlineSource(configuredPattern))
			}
			for _, patternFilePath := range patternFilePaths {
				ignoreSources = append(ignoreSources, contextset.FileSource(patternFilePath))
			}
			for _, inlinePattern := range inlinePatterns {
				ignoreSources = append(ignoreSources, contextset.InlineSource(inlinePattern))
			}

			storeDirectory, initializeError := store.Initialize(workingDirectory, ignoreSources, force, logger)
			if initializeError != nil {
				return initializeError
			}
			fmt.Printf(initializedMessageFormat, storeDirectory)
			return nil
		},
	}

	initCommand.Flags().StringArrayVar(&inlinePatterns, ignoreFlagName, nil, ignoreFlagDescription)
	initCommand.Flags().StringArrayVar(&patternFilePaths, ignoreFileFlagName, nil, ignoreFileFlagDescription)
	registerBooleanFlag(initCommand.Flags(), &useGitignore, useGitignoreFlagName, true, useGitignoreFlagDescription)
	registerBooleanFlag(initCommand.Flags(), &force, forceFlagName, false, forceFlagDescription)
	return initCommand
}

// createDestroyCommand returns the destroy subcommand.
func createDestroyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   destroyUse,
		Short: destroyShortDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			workingDirectory, workingDirectoryError := os.Getwd()
			if workingDirectoryError != nil {
				return fmt.Errorf(workingDirectoryFormat, workingDirectoryError)
			}
			if destroyError := store.Destroy(workingDirectory); destroyError != nil {
				return destroyError
			}
			fmt.Println(destroyedMessage)
			return nil
		},
	}
}

// loadCurrentContext reconstructs the context governing the working directory.
func loadCurrentContext(logger *zap.Logger) (*contextset.Context, error) {
	workingDirectory, workingDirectoryError := os.Getwd()
	if workingDirectoryError != nil {
		return nil, fmt.Errorf(workingDirectoryFormat, workingDirectoryError)
	}
	return store.Load(workingDirectory, logger)
}

// createAddCommand returns the add subcommand.
func createAddCommand(logger *zap.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   addUse,
		Short: addShortDescription,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			selection, loadError := loadCurrentContext(logger)
			if loadError != nil {
				return loadError
			}
			selection.Add(arguments...)
			return store.Save(selection)
		},
	}
}

// createRemoveCommand returns the remove subcommand.
func createRemoveCommand(logger *zap.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   removeUse,
		Short: removeShortDescription,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			selection, loadError := loadCurrentContext(logger)
			if loadError != nil {
				return loadError
			}
			selection.Remove(arguments...)
			return store.Save(selection)
		},
	}
}

// createResetCommand returns the reset subcommand.
func createResetCommand(logger *zap.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   resetUse,
		Short: resetShortDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			selection, loadError := loadCurrentContext(logger)
			if loadError != nil {
				return loadError
			}
			selection.Drop()
			return store.Save(selection)
		},
	}
}

// createListCommand returns the list subcommand.
func createListCommand(logger *zap.Logger) *cobra.Command {
	var absolutePaths bool

	listCommand := &cobra.Command{
		Use:   listUse,
		Short: listShortDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			selection, loadError := loadCurrentContext(logger)
			if loadError != nil {
				return loadError
			}
			fmt.Println(selection.List(!absolutePaths))
			return nil
		},
	}

	registerBooleanFlag(listCommand.Flags(), &absolutePaths, absoluteFlagName, false, absoluteFlagDescription)
	return listCommand
}

// createTreeCommand returns the tree subcommand.
func createTreeCommand(logger *zap.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   treeUse,
		Short: treeShortDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			selection, loadError := loadCurrentContext(logger)
			if loadError != nil {
				return loadError
			}
			fmt.Print(selection.Tree())
			return nil
		},
	}
}

// createGenerateCommand returns the generate subcommand.
func createGenerateCommand(logger *zap.Logger) *cobra.Command {
	var copyToClipboard bool
	var countTokens bool
	var tokenizerModel string
	var outputFilePath string

	generateCommand := &cobra.Command{
		Use:     generateUse,
		Short:   generateShortDescription,
		Example: generateUsageExample,
		Args:    cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			selection, loadError := loadCurrentContext(logger)
			if loadError != nil {
				return loadError
			}
			applicationConfiguration, configurationError := config.LoadApplicationConfiguration(config.LoadOptions{WorkingDirectory: selection.Root()})
			if configurationError != nil {
				return configurationError
			}
			if !command.Flags().Changed(copyFlagName) && applicationConfiguration.Generate.Clipboard != nil {
				copyToClipboard = *applicationConfiguration.Generate.Clipboard
			}
			if !command.Flags().Changed(tokensFlagName) && applicationConfiguration.Generate.Tokens.Enabled != nil {
				countTokens = *applicationConfiguration.Generate.Tokens.Enabled
			}
			if !command.Flags().Changed(modelFlagName) && applicationConfiguration.Generate.Tokens.Model != "" {
				tokenizerModel = applicationConfiguration.Generate.Tokens.Model
			}

			document := selection.Generate()

			if outputFilePath != "" {
				if writeError := os.WriteFile(outputFilePath, []byte(document), documentFilePermissions); writeError != nil {
					return fmt.Errorf(writeDocumentFormat, outputFilePath, writeError)
				}
			} else {
				fmt.Print(document)
			}

			if copyToClipboard {
				if copyError := clipboard.NewService().Copy(document); copyError != nil {
					fmt.Fprintf(os.Stderr, clipboardCopyWarning, copyError)
				}
			}

			if countTokens {
				tokenCounter, resolvedModel, counterError := tokenizer.NewCounter(tokenizer.Config{Model: tokenizerModel})
				if counterError != nil {
					return counterError
				}
				countResult, countError := tokenizer.CountBytes(tokenCounter, []byte(document))
				if countError != nil {
					return countError
				}
				fmt.Fprintf(os.Stderr, tokenSummaryFormat,
					selection.Len(), utils.FormatFileSize(int64(len(document))), countResult.Tokens, resolvedModel)
			}

			return nil
		},
	}

	registerBooleanFlag(generateCommand.Flags(), &copyToClipboard, copyFlagName, false, copyFlagDescription)
	registerBooleanFlag(generateCommand.Flags(), &countTokens, tokensFlagName, false, tokensFlagDescription)
	generateCommand.Flags().StringVar(&tokenizerModel, modelFlagName, defaultTokenizerModelName, modelFlagDescription)
	generateCommand.Flags().StringVar(&outputFilePath, outputFlagName, "", outputFlagDescription)
	return generateCommand
}
