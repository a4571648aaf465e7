package ocr

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	name string
	args []string
}

type stubRunner struct {
	stdout []byte
	stderr []byte
	err    error
	calls  []call
}

func (s *stubRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	s.calls = append(s.calls, call{name: name, args: args})
	return s.stdout, s.stderr, s.err
}

func TestImageTextInvokesTesseract(t *testing.T) {
	r := &stubRunner{stdout: []byte("Greet the driver\n\nAsk about CDL\n")}
	x := NewExtractor(Config{TessdataDir: "/usr/share/tessdata", PSM: 6}, r, nil)

	txt, err := x.ImageText(context.Background(), "/tmp/flow.png")
	require.NoError(t, err)

	assert.Equal(t, "Greet the driver\n\nAsk about CDL\n", txt)
	require.Len(t, r.calls, 1)
	assert.Equal(t, "tesseract", r.calls[0].name)
	assert.Equal(t,
		[]string{"/tmp/flow.png", "stdout", "-l", "eng", "--psm", "6", "--tessdata-dir", "/usr/share/tessdata"},
		r.calls[0].args)
}

func TestImageTextError(t *testing.T) {
	r := &stubRunner{stderr: []byte("Error opening data file"), err: errors.New("exit status 1")}
	x := NewExtractor(Config{}, r, nil)

	_, err := x.ImageText(context.Background(), "/tmp/flow.png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Error opening data file")
}

func TestPDFText(t *testing.T) {
	r := &stubRunner{stdout: []byte("page one\fpage two")}
	x := NewExtractor(Config{Pdftotext: "/opt/bin/pdftotext"}, r, nil)

	txt, err := x.PDFText(context.Background(), "script.pdf")
	require.NoError(t, err)
	assert.Equal(t, "page one\npage two", txt)
	assert.Equal(t, "/opt/bin/pdftotext", r.calls[0].name)
	assert.Equal(t, "script.pdf", r.calls[0].args[len(r.calls[0].args)-2])
}

func TestLines(t *testing.T) {
	assert.Equal(t, []string{"one", "two", "three"}, Lines("  one \n\n two\r\n\t\nthree"))
	assert.Nil(t, Lines("   \n\n"))
}
