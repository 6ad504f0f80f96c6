// Package classify decides how each discovered file is rendered: as a
// language-tagged text block or as a skipped binary.
package classify

import (
	"strings"

	"github.com/avetisov/repoflat/internal/types"
)

// genericTextLabel tags fenced blocks for text files with no known extension.
const genericTextLabel = "text"

// textExtensionLabels maps known text extensions to fenced code block labels.
var textExtensionLabels = map[string]string{
	"py":       "python",
	"go":       "go",
	"js":       "javascript",
	"jsx":      "javascript",
	"mjs":      "javascript",
	"ts":       "typescript",
	"tsx":      "typescript",
	"rb":       "ruby",
	"rs":       "rust",
	"java":     "java",
	"kt":       "kotlin",
	"kts":      "kotlin",
	"c":        "c",
	"h":        "c",
	"cpp":      "cpp",
	"cc":       "cpp",
	"cxx":      "cpp",
	"hpp":      "cpp",
	"cs":       "csharp",
	"php":      "php",
	"swift":    "swift",
	"m":        "objectivec",
	"scala":    "scala",
	"sh":       "shell",
	"bash":     "bash",
	"zsh":      "shell",
	"fish":     "shell",
	"ps1":      "powershell",
	"bat":      "batch",
	"lua":      "lua",
	"pl":       "perl",
	"r":        "r",
	"dart":     "dart",
	"ex":       "elixir",
	"exs":      "elixir",
	"erl":      "erlang",
	"hs":       "haskell",
	"ml":       "ocaml",
	"clj":      "clojure",
	"groovy":   "groovy",
	"gradle":   "groovy",
	"vue":      "vue",
	"svelte":   "svelte",
	"md":       "markdown",
	"markdown": "markdown",
	"rst":      "rst",
	"tex":      "latex",
	"txt":      "text",
	"html":     "html",
	"htm":      "html",
	"css":      "css",
	"scss":     "scss",
	"less":     "less",
	"xml":      "xml",
	"svg":      "xml",
	"json":     "json",
	"yml":      "yaml",
	"yaml":     "yaml",
	"toml":     "toml",
	"ini":      "ini",
	"cfg":      "ini",
	"env":      "text",
	"sql":      "sql",
	"csv":      "csv",
	"tsv":      "text",
	"proto":    "protobuf",
	"tf":       "hcl",
	"hcl":      "hcl",
}

// imageExtensions identifies image formats skipped with the image reason.
var imageExtensions = map[string]struct{}{
	"png": {}, "jpg": {}, "jpeg": {}, "gif": {}, "bmp": {}, "webp": {},
	"ico": {}, "tif": {}, "tiff": {}, "heic": {}, "psd": {},
}

// genericBinaryExtensions identifies archives, executables, office documents,
// and media formats skipped with the generic-binary reason.
var genericBinaryExtensions = map[string]struct{}{
	"zip": {}, "tar": {}, "gz": {}, "tgz": {}, "bz2": {}, "xz": {}, "7z": {}, "rar": {},
	"exe": {}, "dll": {}, "so": {}, "dylib": {}, "a": {}, "o": {}, "bin": {},
	"class": {}, "jar": {}, "war": {}, "pyc": {}, "pyo": {}, "wasm": {},
	"pdf": {}, "doc": {}, "docx": {}, "xls": {}, "xlsx": {}, "ppt": {}, "pptx": {},
	"odt": {}, "ods": {}, "odp": {},
	"mp3": {}, "wav": {}, "flac": {}, "ogg": {}, "mp4": {}, "avi": {}, "mkv": {},
	"mov": {}, "webm": {},
	"ttf": {}, "otf": {}, "woff": {}, "woff2": {}, "eot": {},
	"db": {}, "sqlite": {}, "sqlite3": {},
	"iso": {}, "dmg": {}, "apk": {}, "ipa": {},
}

// Classify returns the verdict for the regular file at absolutePath. The
// decision is ordered and first match wins: known text extension, known
// binary extension, content sniff. The classifier only ever reads the file.
func Classify(absolutePath string, fileName string) types.Verdict {
	extension, hasExtension := splitExtension(fileName)
	if hasExtension {
		if languageLabel, isKnownText := textExtensionLabels[extension]; isKnownText {
			return types.Verdict{Kind: types.VerdictText, Language: languageLabel}
		}
		if _, isImage := imageExtensions[extension]; isImage {
			return types.Verdict{Kind: types.VerdictBinary, Reason: types.BinaryReasonImage}
		}
		if _, isGenericBinary := genericBinaryExtensions[extension]; isGenericBinary {
			return types.Verdict{Kind: types.VerdictBinary, Reason: types.BinaryReasonGeneric}
		}
	}
	if SniffFileIsBinary(absolutePath) {
		return types.Verdict{Kind: types.VerdictBinary, Reason: types.BinaryReasonSniff}
	}
	return types.Verdict{Kind: types.VerdictText, Language: genericTextLabel}
}

// Extension returns the lowercased extension bucket used by the frequency
// table, or the no-extension bucket when the filename has no dot.
func Extension(fileName string) string {
	extension, hasExtension := splitExtension(fileName)
	if !hasExtension {
		return types.NoExtensionBucket
	}
	return extension
}

// splitExtension extracts the lowercased substring after the last dot of the
// filename. The boolean reports whether a dot was present at all.
func splitExtension(fileName string) (string, bool) {
	lastDotIndex := strings.LastIndex(fileName, ".")
	if lastDotIndex < 0 {
		return "", false
	}
	return strings.ToLower(fileName[lastDotIndex+1:]), true
}
