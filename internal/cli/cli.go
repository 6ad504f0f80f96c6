// Package cli provides the command line interface.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/avetisov/repoflat/internal/config"
	"github.com/avetisov/repoflat/internal/ignore"
	"github.com/avetisov/repoflat/internal/report"
	"github.com/avetisov/repoflat/internal/services/clipboard"
	"github.com/avetisov/repoflat/internal/tokenizer"
	"github.com/avetisov/repoflat/internal/types"
	"github.com/avetisov/repoflat/internal/utils"
	"github.com/avetisov/repoflat/internal/walk"
)

const (
	excludeFlagName     = "exclude"
	excludeFlagShort    = "e"
	noGitignoreFlagName = "no-gitignore"
	outputDirFlagName   = "output-dir"
	copyFlagName        = "copy"
	tokensFlagName      = "tokens"
	modelFlagName       = "model"
	versionFlagName     = "version"
	versionTemplate     = "repoflat version: %s\n"

	rootUse              = "repoflat"
	rootShortDescription = "repoflat command line interface"
	rootLongDescription  = `repoflat walks a directory tree and writes two markdown reports:
a structure document listing the directory hierarchy, and optionally a
flattened document embedding every included file's content.
Exclusions merge .gitignore-style patterns with manual tokens.`
	versionFlagDescription = "display application version"

	structureUse              = "structure <root>"
	flattenUse                = "flatten <root>"
	structureAlias            = "s"
	flattenAlias              = "f"
	structureShortDescription = "write the structure document (" + structureAlias + ")"
	flattenShortDescription   = "write the structure and flattened content documents (" + flattenAlias + ")"

	// structureLongDescription provides detailed help for the structure command.
	structureLongDescription = `Write a markdown document containing the directory tree of the root path.
Excluded entries never appear; an excluded directory is pruned entirely.`
	// structureUsageExample demonstrates structure command usage.
	structureUsageExample = `  # Structure of the current project, excluding vendor
  repoflat structure -e vendor .

  # Ignore the .gitignore file entirely
  repoflat structure --no-gitignore ./src`

	// flattenLongDescription provides detailed help for the flatten command.
	flattenLongDescription = `Write the structure document plus a flattened document embedding every
included text file in a language-tagged fenced block. Binary files are
detected and skipped with a placeholder notice.`
	// flattenUsageExample demonstrates flatten command usage.
	flattenUsageExample = `  # Flatten a project into ./out with token totals
  repoflat flatten --output-dir out --tokens .

  # Exclude node_modules and copy the structure document
  repoflat flatten -e node_modules --copy .`

	excludeFlagDescription          = "manual exclusion token (repeatable)"
	disableGitignoreFlagDescription = "do not use .gitignore patterns"
	outputDirFlagDescription        = "directory receiving the output documents"
	copyFlagDescription             = "copy the structure document to the clipboard"
	tokensFlagDescription           = "include token totals in the summary"
	modelFlagDescription            = "tokenizer model used for token counting"
	defaultTokenizerModelName       = "gpt-4o"
	defaultOutputDirectory          = "."

	warningMissingGitignoreFormat    = "No %s found at %s; proceeding without gitignore exclusions"
	warningGitignoreUnreadableFormat = "Failed to read %s: %v; proceeding without gitignore exclusions"
	warningNoFilesIncluded           = "No files survived exclusion; the output documents carry an explicit notice"
	warningClipboardFormat           = "Failed to copy structure document to clipboard: %v"
	informationPatternsFormat        = "Exclusion patterns: %s"
	informationDocumentWrittenText   = "Wrote %s"

	errorRootMissingFormat      = "root path '%s' does not exist"
	errorRootNotDirectoryFormat = "root path '%s' is not a directory"
	errorRootStatFormat         = "stat failed for '%s': %w"
	workingDirectoryErrorFormat = "unable to determine working directory: %w"
)

// Execute runs the repoflat application.
func Execute(logger *zap.Logger) error {
	rootCommand := createRootCommand(logger)
	return rootCommand.Execute()
}

// createRootCommand builds the root Cobra command.
func createRootCommand(logger *zap.Logger) *cobra.Command {
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
		createScanCommand(logger, types.ModeStructure),
		createScanCommand(logger, types.ModeFlatten),
	)
	rootCommand.InitDefaultHelpCmd()
	rootCommand.InitDefaultCompletionCmd()
	return rootCommand
}

// scanOptions stores flag values shared by the structure and flatten commands.
type scanOptions struct {
	exclusionTokens  []string
	disableGitignore bool
	outputDirectory  string
	copyToClipboard  bool
	tokensEnabled    bool
	tokenModel       string
}

// createScanCommand returns the structure or flatten subcommand.
func createScanCommand(logger *zap.Logger, mode string) *cobra.Command {
	var options scanOptions
	options.tokenModel = defaultTokenizerModelName

	commandUse := structureUse
	commandAlias := structureAlias
	commandShort := structureShortDescription
	commandLong := structureLongDescription
	commandExample := structureUsageExample
	if mode == types.ModeFlatten {
		commandUse = flattenUse
		commandAlias = flattenAlias
		commandShort = flattenShortDescription
		commandLong = flattenLongDescription
		commandExample = flattenUsageExample
	}

	scanCommand := &cobra.Command{
		Use:     commandUse,
		Aliases: []string{commandAlias},
		Short:   commandShort,
		Long:    commandLong,
		Example: commandExample,
		Args:    cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			return runScan(logger, command, mode, arguments[0], options)
		},
	}

	scanCommand.Flags().StringArrayVarP(&options.exclusionTokens, excludeFlagName, excludeFlagShort, nil, excludeFlagDescription)
	scanCommand.Flags().BoolVar(&options.disableGitignore, noGitignoreFlagName, false, disableGitignoreFlagDescription)
	scanCommand.Flags().StringVar(&options.outputDirectory, outputDirFlagName, defaultOutputDirectory, outputDirFlagDescription)
	scanCommand.Flags().BoolVar(&options.copyToClipboard, copyFlagName, false, copyFlagDescription)
	if mode == types.ModeFlatten {
		scanCommand.Flags().BoolVar(&options.tokensEnabled, tokensFlagName, false, tokensFlagDescription)
		scanCommand.Flags().StringVar(&options.tokenModel, modelFlagName, defaultTokenizerModelName, modelFlagDescription)
	}
	return scanCommand
}

// runScan executes one full pass: pattern resolution, walk, classification,
// and document writing.
func runScan(logger *zap.Logger, command *cobra.Command, mode string, rootArgument string, options scanOptions) error {
	workingDirectory, workingDirectoryError := os.Getwd()
	if workingDirectoryError != nil {
		return fmt.Errorf(workingDirectoryErrorFormat, workingDirectoryError)
	}

	applicationConfiguration, configurationError := config.LoadApplicationConfiguration(config.LoadOptions{WorkingDirectory: workingDirectory})
	if configurationError != nil {
		return configurationError
	}
	options = overlayConfiguration(command, options, applicationConfiguration)

	absoluteRootPath, rootValidationError := validateRootPath(rootArgument)
	if rootValidationError != nil {
		return rootValidationError
	}

	useGitignore := !options.disableGitignore
	var gitignoreLines []string
	if useGitignore {
		gitignoreFilePath := filepath.Join(absoluteRootPath, utils.GitIgnoreFileName)
		loadedLines, gitignoreFound, loadError := ignore.LoadGitignoreLines(gitignoreFilePath)
		if loadError != nil {
			logger.Warn(fmt.Sprintf(warningGitignoreUnreadableFormat, gitignoreFilePath, loadError))
		} else if !gitignoreFound {
			logger.Warn(fmt.Sprintf(warningMissingGitignoreFormat, utils.GitIgnoreFileName, absoluteRootPath))
		} else {
			gitignoreLines = loadedLines
		}
	}

	patternSet := ignore.NewPatternSet(gitignoreLines, options.exclusionTokens, useGitignore)
	logger.Info(fmt.Sprintf(informationPatternsFormat, strings.Join(patternSet.Patterns(), ", ")))

	walker := walk.NewWalker(ignore.NewMatcher(patternSet), logger)
	rootNode, includedFiles, walkError := walker.Walk(absoluteRootPath)
	if walkError != nil {
		return walkError
	}
	if len(includedFiles) == 0 {
		logger.Warn(warningNoFilesIncluded)
	}

	var tokenCounter tokenizer.Counter
	var tokenModel string
	if options.tokensEnabled {
		createdCounter, resolvedModel, counterError := tokenizer.NewCounter(tokenizer.Config{Model: options.tokenModel})
		if counterError != nil {
			return counterError
		}
		tokenCounter = createdCounter
		tokenModel = resolvedModel
	}

	assembler := report.NewAssembler(logger)
	result := assembler.Assemble(rootNode, includedFiles, report.Options{
		Mode:         mode,
		TokenCounter: tokenCounter,
		TokenModel:   tokenModel,
	})

	if makeDirectoryError := os.MkdirAll(options.outputDirectory, 0o755); makeDirectoryError != nil {
		return fmt.Errorf("creating output directory %s: %w", options.outputDirectory, makeDirectoryError)
	}
	writtenDocuments, writeError := report.WriteDocuments(options.outputDirectory, result, mode)
	if writeError != nil {
		return writeError
	}
	logger.Info(fmt.Sprintf(informationDocumentWrittenText, writtenDocuments.StructurePath))
	if writtenDocuments.FlattenedPath != "" {
		logger.Info(fmt.Sprintf(informationDocumentWrittenText, writtenDocuments.FlattenedPath))
	}

	if options.copyToClipboard {
		if copyError := clipboard.NewService().Copy(result.StructureDocument); copyError != nil {
			logger.Warn(fmt.Sprintf(warningClipboardFormat, copyError))
		}
	}

	return nil
}

// overlayConfiguration applies configuration file defaults for flags the user
// did not set explicitly.
func overlayConfiguration(command *cobra.Command, options scanOptions, applicationConfiguration config.ApplicationConfiguration) scanOptions {
	if !command.Flags().Changed(outputDirFlagName) && applicationConfiguration.OutputDirectory != "" {
		options.outputDirectory = applicationConfiguration.OutputDirectory
	}
	if !command.Flags().Changed(noGitignoreFlagName) && applicationConfiguration.UseGitignore != nil {
		options.disableGitignore = !*applicationConfiguration.UseGitignore
	}
	if !command.Flags().Changed(copyFlagName) && applicationConfiguration.Clipboard != nil {
		options.copyToClipboard = *applicationConfiguration.Clipboard
	}
	if tokensFlag := command.Flags().Lookup(tokensFlagName); tokensFlag != nil {
		if !tokensFlag.Changed && applicationConfiguration.Tokens.Enabled != nil {
			options.tokensEnabled = *applicationConfiguration.Tokens.Enabled
		}
		if modelFlag := command.Flags().Lookup(modelFlagName); modelFlag != nil && !modelFlag.Changed && applicationConfiguration.Tokens.Model != "" {
			options.tokenModel = applicationConfiguration.Tokens.Model
		}
	}
	options.exclusionTokens = append(append([]string{}, applicationConfiguration.Exclude...), options.exclusionTokens...)
	return options
}

// validateRootPath resolves and checks the required root argument.
func validateRootPath(rootArgument string) (string, error) {
	absoluteRootPath, absolutePathError := filepath.Abs(rootArgument)
	if absolutePathError != nil {
		return "", fmt.Errorf("abs failed for '%s': %w", rootArgument, absolutePathError)
	}
	cleanRootPath := filepath.Clean(absoluteRootPath)
	fileInformation, statError := os.Stat(cleanRootPath)
	if statError != nil {
		if os.IsNotExist(statError) {
			return "", fmt.Errorf(errorRootMissingFormat, rootArgument)
		}
		return "", fmt.Errorf(errorRootStatFormat, rootArgument, statError)
	}
	if !fileInformation.IsDir() {
		return "", fmt.Errorf(errorRootNotDirectoryFormat, rootArgument)
	}
	return cleanRootPath, nil
}
