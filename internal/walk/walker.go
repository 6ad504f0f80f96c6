// Package walk enumerates filesystem entries under a scan root, pruning
// excluded directories before descending into them.
package walk

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/avetisov/repoflat/internal/ignore"
	"github.com/avetisov/repoflat/internal/types"
	"github.com/avetisov/repoflat/internal/utils"
)

const (
	// warningSkipSubdirFormat is used when a subdirectory cannot be processed.
	warningSkipSubdirFormat = "Skipping subdirectory %s due to error: %v"
	// warningStatPathFormat is used when file information cannot be retrieved.
	warningStatPathFormat = "Unable to stat %s: %v"

	// errorAbsolutePathFormat is used when the absolute path cannot be determined.
	errorAbsolutePathFormat = "getting absolute path for %s: %w"
	// errorReadDirectoryFormat is used when the root directory cannot be read.
	errorReadDirectoryFormat = "reading directory %s: %w"
)

// serviceFiles are tool metadata entries that never appear in the outputs.
var serviceFiles = map[string]struct{}{
	utils.GitIgnoreFileName: {},
}

// Walker performs the single depth-first pass over the scan root. Entries are
// visited in the stable lexical order returned by os.ReadDir. Symbolic links
// are listed but never followed.
type Walker struct {
	matcher ignore.Matcher
	logger  *zap.Logger
}

// NewWalker returns a Walker that consults the matcher before descending and
// reports recoverable problems through the provided logger.
func NewWalker(matcher ignore.Matcher, logger *zap.Logger) *Walker {
	return &Walker{matcher: matcher, logger: logger}
}

// Walk returns the hierarchical listing rooted at rootPath together with the
// flat ordered list of included regular files. An unreadable root is an
// error; unreadable entries below it are warned about and skipped.
func (walker *Walker) Walk(rootPath string) (*types.TreeNode, []types.FileRecord, error) {
	absoluteRootPath, absolutePathError := filepath.Abs(rootPath)
	if absolutePathError != nil {
		return nil, nil, fmt.Errorf(errorAbsolutePathFormat, rootPath, absolutePathError)
	}

	rootNode := &types.TreeNode{
		Path: absoluteRootPath,
		Name: filepath.Base(absoluteRootPath),
		Type: types.NodeTypeDirectory,
	}

	rootEntries, readRootError := os.ReadDir(absoluteRootPath)
	if readRootError != nil {
		return nil, nil, fmt.Errorf(errorReadDirectoryFormat, absoluteRootPath, readRootError)
	}

	var includedFiles []types.FileRecord
	rootNode.Children = walker.buildNodes(rootEntries, absoluteRootPath, absoluteRootPath, &includedFiles)
	return rootNode, includedFiles, nil
}

// buildNodes converts directory entries into tree nodes, recursing into
// non-excluded subdirectories and collecting included regular files.
func (walker *Walker) buildNodes(directoryEntries []os.DirEntry, currentDirectoryPath string, rootDirectoryPath string, includedFiles *[]types.FileRecord) []*types.TreeNode {
	var nodes []*types.TreeNode

	for _, directoryEntry := range directoryEntries {
		if _, isServiceFile := serviceFiles[directoryEntry.Name()]; isServiceFile {
			continue
		}
		childPath := filepath.Join(currentDirectoryPath, directoryEntry.Name())
		relativeChildPath := utils.RelativePathOrSelf(childPath, rootDirectoryPath)
		if walker.matcher.IsExcluded(relativeChildPath) {
			continue
		}

		node := &types.TreeNode{
			Path: childPath,
			Name: directoryEntry.Name(),
		}

		if directoryEntry.IsDir() {
			node.Type = types.NodeTypeDirectory
			childEntries, readDirectoryError := os.ReadDir(childPath)
			if readDirectoryError != nil {
				walker.logger.Warn(fmt.Sprintf(warningSkipSubdirFormat, childPath, readDirectoryError))
			} else {
				node.Children = walker.buildNodes(childEntries, childPath, rootDirectoryPath, includedFiles)
			}
			nodes = append(nodes, node)
			continue
		}

		node.Type = types.NodeTypeFile
		if directoryEntry.Type().IsRegular() {
			var sizeBytes int64
			entryInfo, infoError := directoryEntry.Info()
			if infoError != nil {
				walker.logger.Warn(fmt.Sprintf(warningStatPathFormat, childPath, infoError))
			} else {
				sizeBytes = entryInfo.Size()
			}
			*includedFiles = append(*includedFiles, types.FileRecord{
				AbsolutePath: childPath,
				RelativePath: relativeChildPath,
				SizeBytes:    sizeBytes,
			})
		}
		nodes = append(nodes, node)
	}

	return nodes
}
