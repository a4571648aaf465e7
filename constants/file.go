package constants

import "strings"

// Format is the coarse document kind derived from a file extension.
type Format string

const (
	XML   Format = "XML"
	IMAGE Format = "IMAGE"
	PDF   Format = "PDF"
	DOCX  Format = "DOCX"
	JSON  Format = "JSON"
	TEXT  Format = "TEXT"
)

// UnsupportedFlowFormat is returned as the only flow step when the flow
// document is neither markup nor an image.
const UnsupportedFlowFormat = "Unsupported file format"

// DownloadFilename is the attachment name of the generated document.
const DownloadFilename = "RecruitAI_System_Prompt.txt"

var extFormats = map[string]Format{
	"xml":  XML,
	"png":  IMAGE,
	"jpg":  IMAGE,
	"jpeg": IMAGE,
	"pdf":  PDF,
	"docx": DOCX,
	"json": JSON,
	"txt":  TEXT,
	"md":   TEXT,
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}

// MapExtToFormat returns the format for an extension, or "" when unknown.
func MapExtToFormat(ext string) Format {
	return extFormats[NormalizeExt(ext)]
}

// IsFlowFormat reports whether the flow extractor can read this format.
func IsFlowFormat(f Format) bool {
	return f == XML || f == IMAGE
}

// Files written to the output directory on every successful run.
const (
	FinalPromptFile    = "final_prompt.txt"
	RenderedPromptFile = "rendered_prompt.txt"
)
