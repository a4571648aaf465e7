package script

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeText struct {
	image, pdf string
	calls      []string
}

func (f *fakeText) ImageText(_ context.Context, path string) (string, error) {
	f.calls = append(f.calls, "image:"+path)
	return f.image, nil
}

func (f *fakeText) PDFText(_ context.Context, path string) (string, error) {
	f.calls = append(f.calls, "pdf:"+path)
	return f.pdf, nil
}

func TestExtractPlainText(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "example.txt")
	script := "Agent: Hi, this is Sam from Acme Logistics.\nAgent: Do you have a CDL?\n"
	require.NoError(t, os.WriteFile(p, []byte(script), 0o600))

	got, err := NewExtractor(nil, nil).Extract(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, script, got)
}

func TestExtractMissingFile(t *testing.T) {
	_, err := NewExtractor(nil, nil).Extract(context.Background(), filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestExtractDelegatesPDFAndImage(t *testing.T) {
	ft := &fakeText{image: "from image", pdf: "from pdf"}
	x := NewExtractor(ft, nil)

	got, err := x.Extract(context.Background(), "script.PDF")
	require.NoError(t, err)
	assert.Equal(t, "from pdf", got)

	got, err = x.Extract(context.Background(), "script.png")
	require.NoError(t, err)
	assert.Equal(t, "from image", got)

	assert.Equal(t, []string{"pdf:script.PDF", "image:script.png"}, ft.calls)
}

func writeDocx(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "script.docx")
	f, err := os.Create(p)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"
  xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">
  <w:body>` + body + `</w:body>
</w:document>`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return p
}

func TestExtractDocx(t *testing.T) {
	p := writeDocx(t, `
    <w:p><w:r><w:t>Agent: Hello, </w:t></w:r><w:r><w:t>is this Jordan?</w:t></w:r></w:p>
    <w:p><w:r><w:t>Driver: Yes.</w:t></w:r></w:p>`)

	got, err := NewExtractor(nil, nil).Extract(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, "Agent: Hello, is this Jordan?\nDriver: Yes.", got)
}

func TestExtractDocxKeepsDocumentOrder(t *testing.T) {
	p := writeDocx(t, `
    <w:p><w:r><w:t>Agent: Our routes are listed at </w:t></w:r><w:hyperlink r:id="rId5"><w:r><w:t>example.com/routes</w:t></w:r></w:hyperlink><w:r><w:t> for review.</w:t></w:r></w:p>
    <w:tbl>
      <w:tr>
        <w:tc><w:p><w:r><w:t>Home time</w:t></w:r></w:p></w:tc>
        <w:tc><w:p><w:r><w:t>Weekly</w:t></w:r></w:p></w:tc>
      </w:tr>
    </w:tbl>
    <w:p><w:r><w:t>Driver: Sounds good.</w:t></w:r></w:p>`)

	got, err := NewExtractor(nil, nil).Extract(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, strings.Join([]string{
		"Agent: Our routes are listed at example.com/routes for review.",
		"Home time",
		"Weekly",
		"Driver: Sounds good.",
	}, "\n"), got)
}
