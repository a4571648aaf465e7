// Package script reads the example call script uploaded with each request.
package script

import (
	"archive/zip"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/beevik/etree"

	"github.com/joseph-ayodele/system-prompt-generator/constants"
	"github.com/joseph-ayodele/system-prompt-generator/internal/ocr"
)

// TextSource is the OCR capability used for PDF and image scripts.
type TextSource interface {
	ImageText(ctx context.Context, path string) (string, error)
	PDFText(ctx context.Context, path string) (string, error)
}

type Extractor struct {
	text   TextSource
	logger *slog.Logger
}

func NewExtractor(text TextSource, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{text: text, logger: logger}
}

// Extract returns the script text. Plain-text formats are returned verbatim;
// OCR and PDF output is normalized.
func (x *Extractor) Extract(ctx context.Context, path string) (string, error) {
	format := constants.MapExtToFormat(filepath.Ext(path))
	x.logger.Debug("script.extract.start", "path", path, "format", format)

	switch format {
	case constants.PDF:
		if x.text == nil {
			return "", fmt.Errorf("no text extractor configured for pdf")
		}
		text, err := x.text.PDFText(ctx, path)
		if err != nil {
			return "", err
		}
		return ocr.Normalize(text), nil
	case constants.IMAGE:
		if x.text == nil {
			return "", fmt.Errorf("no OCR engine configured for images")
		}
		text, err := x.text.ImageText(ctx, path)
		if err != nil {
			return "", err
		}
		return ocr.Normalize(text), nil
	case constants.DOCX:
		return DocxText(path)
	default:
		b, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read script: %w", err)
		}
		return string(b), nil
	}
}

// DocxText returns the text of every paragraph in word/document.xml, one per line.
func DocxText(path string) (string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}
	defer func() { _ = zr.Close() }()

	var body *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			body = f
			break
		}
	}
	if body == nil {
		return "", fmt.Errorf("docx has no word/document.xml")
	}

	rc, err := body.Open()
	if err != nil {
		return "", fmt.Errorf("open document.xml: %w", err)
	}
	defer func() { _ = rc.Close() }()

	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(rc); err != nil {
		return "", fmt.Errorf("parse document.xml: %w", err)
	}

	var lines []string
	collectParagraphs(doc.Root(), &lines)
	return strings.Join(lines, "\n"), nil
}

func isWord(el *etree.Element, tag string) bool {
	return el.Space == "w" && el.Tag == tag
}

// collectParagraphs appends one line per w:p in document order. Paragraphs
// nested inside another one (text boxes) follow their parent's line.
func collectParagraphs(el *etree.Element, lines *[]string) {
	if el == nil {
		return
	}
	if !isWord(el, "p") {
		for _, child := range el.ChildElements() {
			collectParagraphs(child, lines)
		}
		return
	}
	var b strings.Builder
	var nested []*etree.Element
	collectRuns(el, &b, &nested)
	*lines = append(*lines, b.String())
	for _, p := range nested {
		collectParagraphs(p, lines)
	}
}

// collectRuns writes w:t text under el in document order, stopping at
// nested paragraphs.
func collectRuns(el *etree.Element, b *strings.Builder, nested *[]*etree.Element) {
	for _, child := range el.ChildElements() {
		switch {
		case isWord(child, "p"):
			*nested = append(*nested, child)
		case isWord(child, "t"):
			b.WriteString(child.Text())
		default:
			collectRuns(child, b, nested)
		}
	}
}
