// Package report assembles the structure and flattened content documents
// from the walker's outputs and the classifier's verdicts.
package report

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/avetisov/repoflat/internal/classify"
	"github.com/avetisov/repoflat/internal/tokenizer"
	"github.com/avetisov/repoflat/internal/types"
	"github.com/avetisov/repoflat/internal/utils"
)

const (
	structureDocumentTitle = "# Directory Structure"
	flattenedDocumentTitle = "# Flattened File Contents"
	summaryHeading         = "## Summary"

	rootLineFormat      = "Root: %s"
	generatedLineFormat = "Generated: %s"

	treeBranchConnector = "├── "
	treeLastConnector   = "└── "
	treeBranchPadding   = "│   "
	treeLastPadding     = "    "

	fenceDelimiter = "```"

	noFilesNotice      = "_No files were included._"
	binaryNoticeFormat = "_binary file skipped (%s)_"
	unreadableNotice   = "_file skipped (read error)_"

	includedFilesLineFormat = "Included files: %d"
	totalSizeLineFormat     = "Total size: %s"
	totalTokensLineFormat   = "Estimated tokens: %d (%s)"

	extensionTableHeader    = "| Extension | Count |"
	extensionTableSeparator = "| --- | --- |"
	extensionTableRowFormat = "| %s | %d |"

	// warningFileReadFormat is used when an included file cannot be read back.
	warningFileReadFormat = "Failed to read file %s: %v"
	// warningTokenCountFormat is used when token estimation fails for a file.
	warningTokenCountFormat = "Failed to count tokens for %s: %v"
)

// Options selects what the assembler produces for one scan.
type Options struct {
	Mode         string
	TokenCounter tokenizer.Counter
	TokenModel   string
}

// Result holds the rendered documents. FlattenedDocument is empty in
// structure-only mode.
type Result struct {
	StructureDocument string
	FlattenedDocument string
	Summary           types.Summary
}

// Assembler renders the output documents for one scan.
type Assembler struct {
	logger *zap.Logger
	now    func() time.Time
}

// NewAssembler returns an Assembler reporting recoverable problems through
// the provided logger.
func NewAssembler(logger *zap.Logger) *Assembler {
	return &Assembler{logger: logger, now: time.Now}
}

// Assemble classifies every included file and renders the requested
// documents. File contents are read only in flatten mode; read failures are
// warned about and never abort the assembly.
func (assembler *Assembler) Assemble(rootNode *types.TreeNode, includedFiles []types.FileRecord, options Options) Result {
	generatedAt := assembler.now()
	flattenRequested := options.Mode == types.ModeFlatten

	var summary types.Summary
	var flattenedBody strings.Builder

	extensionCounts := make(map[string]int)
	for _, fileRecord := range includedFiles {
		fileName := fileRecord.RelativePath
		if slashIndex := strings.LastIndex(fileName, "/"); slashIndex >= 0 {
			fileName = fileName[slashIndex+1:]
		}
		verdict := classify.Classify(fileRecord.AbsolutePath, fileName)

		summary.TotalFiles++
		summary.TotalBytes += fileRecord.SizeBytes
		extensionCounts[classify.Extension(fileName)]++

		if !flattenRequested {
			continue
		}

		flattenedBody.WriteString("## " + fileRecord.RelativePath + "\n\n")
		if verdict.IsBinary() {
			flattenedBody.WriteString(fmt.Sprintf(binaryNoticeFormat, verdict.Reason) + "\n\n")
			continue
		}

		fileBytes, readError := os.ReadFile(fileRecord.AbsolutePath)
		if readError != nil {
			assembler.logger.Warn(fmt.Sprintf(warningFileReadFormat, fileRecord.AbsolutePath, readError))
			flattenedBody.WriteString(unreadableNotice + "\n\n")
			continue
		}

		if options.TokenCounter != nil {
			countResult, tokenError := tokenizer.CountBytes(options.TokenCounter, fileBytes)
			if tokenError != nil {
				assembler.logger.Warn(fmt.Sprintf(warningTokenCountFormat, fileRecord.AbsolutePath, tokenError))
			} else if countResult.Counted {
				summary.TotalTokens += countResult.Tokens
			}
		}

		escapedContent := classify.EscapeTripleBackticks(string(fileBytes))
		flattenedBody.WriteString(fenceDelimiter + verdict.Language + "\n")
		flattenedBody.WriteString(escapedContent)
		if !strings.HasSuffix(escapedContent, "\n") {
			flattenedBody.WriteString("\n")
		}
		flattenedBody.WriteString(fenceDelimiter + "\n\n")
	}

	summary.ExtensionCounts = sortedExtensionCounts(extensionCounts)
	if options.TokenCounter != nil {
		summary.Model = options.TokenModel
	}

	result := Result{Summary: summary}
	result.StructureDocument = assembler.renderStructureDocument(rootNode, summary, flattenRequested, generatedAt)
	if flattenRequested {
		result.FlattenedDocument = assembler.renderFlattenedDocument(rootNode.Path, flattenedBody.String(), summary, generatedAt)
	}
	return result
}

// renderStructureDocument produces the structure document: header, fenced
// tree listing, and in flatten mode a summary section with the extension
// frequency table.
func (assembler *Assembler) renderStructureDocument(rootNode *types.TreeNode, summary types.Summary, includeSummary bool, generatedAt time.Time) string {
	var document strings.Builder
	document.WriteString(structureDocumentTitle + "\n\n")
	document.WriteString(fmt.Sprintf(rootLineFormat, rootNode.Path) + "\n")
	document.WriteString(fmt.Sprintf(generatedLineFormat, utils.FormatTimestamp(generatedAt)) + "\n\n")

	document.WriteString(fenceDelimiter + "\n")
	document.WriteString(rootNode.Name + "\n")
	writeTreeChildren(&document, rootNode, "")
	document.WriteString(fenceDelimiter + "\n")

	if includeSummary {
		document.WriteString("\n" + summaryHeading + "\n\n")
		if summary.TotalFiles == 0 {
			document.WriteString(noFilesNotice + "\n")
			return document.String()
		}
		document.WriteString(fmt.Sprintf(includedFilesLineFormat, summary.TotalFiles) + "\n")
		document.WriteString(fmt.Sprintf(totalSizeLineFormat, utils.FormatFileSize(summary.TotalBytes)) + "\n")
		if summary.Model != "" {
			document.WriteString(fmt.Sprintf(totalTokensLineFormat, summary.TotalTokens, summary.Model) + "\n")
		}
		document.WriteString("\n" + extensionTableHeader + "\n")
		document.WriteString(extensionTableSeparator + "\n")
		for _, extensionCount := range summary.ExtensionCounts {
			document.WriteString(fmt.Sprintf(extensionTableRowFormat, extensionCount.Extension, extensionCount.Count) + "\n")
		}
	}

	return document.String()
}

// renderFlattenedDocument wraps the per-file body with the document header.
func (assembler *Assembler) renderFlattenedDocument(rootPath string, body string, summary types.Summary, generatedAt time.Time) string {
	var document strings.Builder
	document.WriteString(flattenedDocumentTitle + "\n\n")
	document.WriteString(fmt.Sprintf(rootLineFormat, rootPath) + "\n")
	document.WriteString(fmt.Sprintf(generatedLineFormat, utils.FormatTimestamp(generatedAt)) + "\n\n")
	if summary.TotalFiles == 0 {
		document.WriteString(noFilesNotice + "\n")
		return document.String()
	}
	document.WriteString(body)
	return document.String()
}

// writeTreeChildren renders the children of node using branch connectors.
func writeTreeChildren(document *strings.Builder, node *types.TreeNode, prefix string) {
	childCount := len(node.Children)
	for childIndex, childNode := range node.Children {
		connector := treeBranchConnector
		childPrefix := prefix + treeBranchPadding
		if childIndex == childCount-1 {
			connector = treeLastConnector
			childPrefix = prefix + treeLastPadding
		}
		document.WriteString(prefix + connector + childNode.Name + "\n")
		if childNode.Type == types.NodeTypeDirectory {
			writeTreeChildren(document, childNode, childPrefix)
		}
	}
}

// sortedExtensionCounts orders the frequency table by descending count with
// ties broken by extension string.
func sortedExtensionCounts(extensionCounts map[string]int) []types.ExtensionCount {
	counts := make([]types.ExtensionCount, 0, len(extensionCounts))
	for extension, count := range extensionCounts {
		counts = append(counts, types.ExtensionCount{Extension: extension, Count: count})
	}
	sort.Slice(counts, func(firstIndex, secondIndex int) bool {
		if counts[firstIndex].Count != counts[secondIndex].Count {
			return counts[firstIndex].Count > counts[secondIndex].Count
		}
		return counts[firstIndex].Extension < counts[secondIndex].Extension
	})
	return counts
}
