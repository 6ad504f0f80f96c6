// Package types defines every cross-package data structure used by the repoflat CLI.
package types

const (
	NodeTypeFile      = "file"
	NodeTypeDirectory = "directory"

	ModeStructure = "structure"
	ModeFlatten   = "flatten"
)

// Verdict kinds produced by the content classifier.
const (
	VerdictText   = "text"
	VerdictBinary = "binary"
)

// Skip reasons attached to binary verdicts.
const (
	BinaryReasonImage   = "image"
	BinaryReasonGeneric = "generic-binary"
	BinaryReasonSniff   = "content-sniff"
)

// NoExtensionBucket labels files without an extension in the frequency table.
const NoExtensionBucket = "(no extension)"

// TreeNode represents one entry of the scanned directory hierarchy.
type TreeNode struct {
	Path     string
	Name     string
	Type     string
	Children []*TreeNode
}

// FileRecord is one included regular file, in walk order.
type FileRecord struct {
	AbsolutePath string
	RelativePath string
	SizeBytes    int64
}

// Verdict describes how a file's content is handled in the flattened document.
type Verdict struct {
	Kind     string
	Language string
	Reason   string
}

// IsBinary reports whether the verdict skips the file's content.
func (verdict Verdict) IsBinary() bool {
	return verdict.Kind == VerdictBinary
}

// ExtensionCount is one row of the extension frequency table.
type ExtensionCount struct {
	Extension string
	Count     int
}

// Summary aggregates information about the included files.
type Summary struct {
	TotalFiles      int
	TotalBytes      int64
	TotalTokens     int
	Model           string
	ExtensionCounts []ExtensionCount
}
