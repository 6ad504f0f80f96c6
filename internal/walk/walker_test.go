package walk

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/avetisov/repoflat/internal/ignore"
	"github.com/avetisov/repoflat/internal/types"
)

// writeTestFile creates a file with the specified content, failing the test on error.
func writeTestFile(testingHandle *testing.T, filePath string, content string) {
	testingHandle.Helper()
	if writeError := os.WriteFile(filePath, []byte(content), 0o644); writeError != nil {
		testingHandle.Fatalf("failed to write %s: %v", filePath, writeError)
	}
}

// makeTestDirectory creates a directory, failing the test on error.
func makeTestDirectory(testingHandle *testing.T, directoryPath string) {
	testingHandle.Helper()
	if makeDirectoryError := os.MkdirAll(directoryPath, 0o755); makeDirectoryError != nil {
		testingHandle.Fatalf("failed to create %s: %v", directoryPath, makeDirectoryError)
	}
}

// buildSampleTree creates a root containing hidden files, a prunable
// directory, and a nested kept file.
func buildSampleTree(testingHandle *testing.T) string {
	testingHandle.Helper()
	rootDirectory := testingHandle.TempDir()

	writeTestFile(testingHandle, filepath.Join(rootDirectory, ".hidden.txt"), "hidden\n")
	writeTestFile(testingHandle, filepath.Join(rootDirectory, "a.py"), "print(1)\n")

	nodeModulesPath := filepath.Join(rootDirectory, "node_modules")
	makeTestDirectory(testingHandle, nodeModulesPath)
	writeTestFile(testingHandle, filepath.Join(nodeModulesPath, "x.js"), "module.exports = {}\n")

	subdirectoryPath := filepath.Join(rootDirectory, "sub")
	makeTestDirectory(testingHandle, subdirectoryPath)
	writeTestFile(testingHandle, filepath.Join(subdirectoryPath, "keep.md"), "# keep\n")
	writeTestFile(testingHandle, filepath.Join(subdirectoryPath, "skip.log"), "noise\n")

	return rootDirectory
}

// collectTreeNames flattens the hierarchical listing into relative name paths.
func collectTreeNames(node *types.TreeNode, prefix string, names *[]string) {
	for _, childNode := range node.Children {
		childName := prefix + childNode.Name
		*names = append(*names, childName)
		if childNode.Type == types.NodeTypeDirectory {
			collectTreeNames(childNode, childName+"/", names)
		}
	}
}

// relativeFilePaths projects the flat file list onto relative paths.
func relativeFilePaths(includedFiles []types.FileRecord) []string {
	var relativePaths []string
	for _, fileRecord := range includedFiles {
		relativePaths = append(relativePaths, fileRecord.RelativePath)
	}
	return relativePaths
}

// TestWalkPrunesExcludedDirectories verifies that nothing underneath an
// excluded directory appears in either output.
func TestWalkPrunesExcludedDirectories(testingHandle *testing.T) {
	rootDirectory := buildSampleTree(testingHandle)
	patternSet := ignore.NewPatternSet(nil, []string{"node_modules", "skip.log"}, false)
	walker := NewWalker(ignore.NewMatcher(patternSet), zap.NewNop())

	rootNode, includedFiles, walkError := walker.Walk(rootDirectory)
	if walkError != nil {
		testingHandle.Fatalf("Walk failed: %v", walkError)
	}

	expectedFiles := []string{".hidden.txt", "a.py", "sub/keep.md"}
	if !reflect.DeepEqual(relativeFilePaths(includedFiles), expectedFiles) {
		testingHandle.Fatalf("unexpected flat file list: got %v want %v", relativeFilePaths(includedFiles), expectedFiles)
	}

	var treeNames []string
	collectTreeNames(rootNode, "", &treeNames)
	for _, treeName := range treeNames {
		if strings.Contains(treeName, "node_modules") || strings.Contains(treeName, "x.js") {
			testingHandle.Fatalf("pruned entry leaked into the listing: %v", treeNames)
		}
		if strings.Contains(treeName, "skip.log") {
			testingHandle.Fatalf("excluded file leaked into the listing: %v", treeNames)
		}
	}

	expectedTreeNames := []string{".hidden.txt", "a.py", "sub", "sub/keep.md"}
	if !reflect.DeepEqual(treeNames, expectedTreeNames) {
		testingHandle.Fatalf("unexpected listing: got %v want %v", treeNames, expectedTreeNames)
	}
}

// TestWalkIsStableAcrossRuns verifies two walks over an unchanged tree agree.
func TestWalkIsStableAcrossRuns(testingHandle *testing.T) {
	rootDirectory := buildSampleTree(testingHandle)
	walker := NewWalker(ignore.NewMatcher(ignore.NewPatternSet(nil, nil, false)), zap.NewNop())

	_, firstFiles, firstError := walker.Walk(rootDirectory)
	if firstError != nil {
		testingHandle.Fatalf("first Walk failed: %v", firstError)
	}
	_, secondFiles, secondError := walker.Walk(rootDirectory)
	if secondError != nil {
		testingHandle.Fatalf("second Walk failed: %v", secondError)
	}

	if !reflect.DeepEqual(relativeFilePaths(firstFiles), relativeFilePaths(secondFiles)) {
		testingHandle.Fatalf("walk order differs between runs: %v vs %v", relativeFilePaths(firstFiles), relativeFilePaths(secondFiles))
	}
}

// TestWalkEmptyPatternSetIncludesEverything verifies no exclusions apply for
// an empty set, hidden entries included.
func TestWalkEmptyPatternSetIncludesEverything(testingHandle *testing.T) {
	rootDirectory := buildSampleTree(testingHandle)
	walker := NewWalker(ignore.NewMatcher(ignore.NewPatternSet(nil, nil, false)), zap.NewNop())

	_, includedFiles, walkError := walker.Walk(rootDirectory)
	if walkError != nil {
		testingHandle.Fatalf("Walk failed: %v", walkError)
	}

	expectedFiles := []string{".hidden.txt", "a.py", "node_modules/x.js", "sub/keep.md", "sub/skip.log"}
	if !reflect.DeepEqual(relativeFilePaths(includedFiles), expectedFiles) {
		testingHandle.Fatalf("unexpected flat file list: got %v want %v", relativeFilePaths(includedFiles), expectedFiles)
	}
}

// TestWalkMissingRootFails verifies an unreadable root is a hard error.
func TestWalkMissingRootFails(testingHandle *testing.T) {
	missingRoot := filepath.Join(testingHandle.TempDir(), "absent")
	walker := NewWalker(ignore.NewMatcher(ignore.NewPatternSet(nil, nil, false)), zap.NewNop())

	if _, _, walkError := walker.Walk(missingRoot); walkError == nil {
		testingHandle.Fatalf("expected error for missing root")
	}
}

// TestWalkSkipsUnreadableSubdirectories verifies an unreadable subdirectory
// is listed but skipped without aborting the walk.
func TestWalkSkipsUnreadableSubdirectories(testingHandle *testing.T) {
	if os.Geteuid() == 0 {
		testingHandle.Skip("permission bits do not restrict root")
	}

	rootDirectory := testingHandle.TempDir()
	writeTestFile(testingHandle, filepath.Join(rootDirectory, "readable.txt"), "content\n")
	lockedDirectory := filepath.Join(rootDirectory, "locked")
	makeTestDirectory(testingHandle, lockedDirectory)
	writeTestFile(testingHandle, filepath.Join(lockedDirectory, "secret.txt"), "secret\n")
	if chmodError := os.Chmod(lockedDirectory, 0o000); chmodError != nil {
		testingHandle.Fatalf("chmod failed: %v", chmodError)
	}
	testingHandle.Cleanup(func() { _ = os.Chmod(lockedDirectory, 0o755) })

	walker := NewWalker(ignore.NewMatcher(ignore.NewPatternSet(nil, nil, false)), zap.NewNop())
	rootNode, includedFiles, walkError := walker.Walk(rootDirectory)
	if walkError != nil {
		testingHandle.Fatalf("Walk failed: %v", walkError)
	}

	expectedFiles := []string{"readable.txt"}
	if !reflect.DeepEqual(relativeFilePaths(includedFiles), expectedFiles) {
		testingHandle.Fatalf("unexpected flat file list: got %v want %v", relativeFilePaths(includedFiles), expectedFiles)
	}

	var treeNames []string
	collectTreeNames(rootNode, "", &treeNames)
	expectedTreeNames := []string{"locked", "readable.txt"}
	if !reflect.DeepEqual(treeNames, expectedTreeNames) {
		testingHandle.Fatalf("unexpected listing: got %v want %v", treeNames, expectedTreeNames)
	}
}

// TestWalkDoesNotFollowSymlinkedDirectories verifies symbolic links are never
// descended into, so cyclic links cannot loop the walk.
func TestWalkDoesNotFollowSymlinkedDirectories(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	writeTestFile(testingHandle, filepath.Join(rootDirectory, "real.txt"), "content\n")
	if symlinkError := os.Symlink(rootDirectory, filepath.Join(rootDirectory, "loop")); symlinkError != nil {
		testingHandle.Skipf("symlinks unavailable: %v", symlinkError)
	}

	walker := NewWalker(ignore.NewMatcher(ignore.NewPatternSet(nil, nil, false)), zap.NewNop())
	_, includedFiles, walkError := walker.Walk(rootDirectory)
	if walkError != nil {
		testingHandle.Fatalf("Walk failed: %v", walkError)
	}

	expectedFiles := []string{"real.txt"}
	if !reflect.DeepEqual(relativeFilePaths(includedFiles), expectedFiles) {
		testingHandle.Fatalf("unexpected flat file list: got %v want %v", relativeFilePaths(includedFiles), expectedFiles)
	}
}
