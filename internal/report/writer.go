package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/avetisov/repoflat/internal/types"
)

const (
	structureFilePrefix   = "structure_"
	flattenedFilePrefix   = "flattened_"
	outputFileSuffix      = ".md"
	outputTimestampLayout = "20060102_150405"

	outputFilePermissions = 0o644
)

// WrittenDocuments lists the paths produced by one run.
type WrittenDocuments struct {
	StructurePath string
	FlattenedPath string
}

// WriteDocuments writes the rendered documents into outputDirectory using
// date-stamped filenames. Each run produces a fresh, independent pair.
func WriteDocuments(outputDirectory string, result Result, mode string) (WrittenDocuments, error) {
	timestamp := time.Now().Format(outputTimestampLayout)

	var written WrittenDocuments
	written.StructurePath = filepath.Join(outputDirectory, structureFilePrefix+timestamp+outputFileSuffix)
	if writeError := os.WriteFile(written.StructurePath, []byte(result.StructureDocument), outputFilePermissions); writeError != nil {
		return WrittenDocuments{}, fmt.Errorf("writing structure document %s: %w", written.StructurePath, writeError)
	}

	if mode == types.ModeFlatten {
		written.FlattenedPath = filepath.Join(outputDirectory, flattenedFilePrefix+timestamp+outputFileSuffix)
		if writeError := os.WriteFile(written.FlattenedPath, []byte(result.FlattenedDocument), outputFilePermissions); writeError != nil {
			return WrittenDocuments{}, fmt.Errorf("writing flattened document %s: %w", written.FlattenedPath, writeError)
		}
	}

	return written, nil
}
