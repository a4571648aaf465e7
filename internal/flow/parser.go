// Package flow turns a workflow document into an ordered list of steps.
package flow

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/beevik/etree"

	"github.com/joseph-ayodele/system-prompt-generator/constants"
	"github.com/joseph-ayodele/system-prompt-generator/internal/ocr"
)

// StepTag is the element name collected from XML flow documents.
const StepTag = "step"

// ImageReader is the OCR capability the parser needs.
type ImageReader interface {
	ImageText(ctx context.Context, path string) (string, error)
}

type Parser struct {
	images ImageReader
	logger *slog.Logger
}

func NewParser(images ImageReader, logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{images: images, logger: logger}
}

// Parse picks a strategy based on file extension. Unknown extensions are not
// an error: they yield a single "Unsupported file format" step.
func (p *Parser) Parse(ctx context.Context, path string) ([]string, error) {
	ext := constants.NormalizeExt(filepath.Ext(path))
	switch constants.MapExtToFormat(ext) {
	case constants.XML:
		doc := etree.NewDocument()
		if err := doc.ReadFromFile(path); err != nil {
			return nil, fmt.Errorf("parse flow xml: %w", err)
		}
		steps := Steps(doc)
		p.logger.Debug("flow.xml.ok", "path", path, "steps", len(steps))
		return steps, nil
	case constants.IMAGE:
		if p.images == nil {
			return nil, fmt.Errorf("no OCR engine configured for %q", ext)
		}
		txt, err := p.images.ImageText(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("ocr flow image: %w", err)
		}
		steps := ocr.Lines(txt)
		p.logger.Debug("flow.image.ok", "path", path, "steps", len(steps))
		return steps, nil
	default:
		p.logger.Warn("unsupported flow extension", "extension", ext)
		return []string{constants.UnsupportedFlowFormat}, nil
	}
}

// ParseXML reads steps from an XML stream.
func ParseXML(r io.Reader) ([]string, error) {
	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("parse flow xml: %w", err)
	}
	return Steps(doc), nil
}

// Steps returns the stripped leading text of every unprefixed <step>
// element in document order. Elements without leading text are skipped.
func Steps(doc *etree.Document) []string {
	var out []string
	walk(doc.Root(), func(el *etree.Element) {
		if el.Space != "" || el.Tag != StepTag {
			return
		}
		if txt := el.Text(); txt != "" {
			out = append(out, strings.TrimSpace(txt))
		}
	})
	return out
}

// walk visits el and its descendants depth-first, parents before children.
func walk(el *etree.Element, visit func(*etree.Element)) {
	if el == nil {
		return
	}
	visit(el)
	for _, child := range el.ChildElements() {
		walk(child, visit)
	}
}
