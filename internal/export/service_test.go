package export

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/system-prompt-generator/internal/repository"
)

func TestExportGenerationsXLSX(t *testing.T) {
	ctx := context.Background()
	db, err := repository.Open(ctx, repository.Config{DSN: filepath.Join(t.TempDir(), "history.db")}, nil)
	require.NoError(t, err)
	defer db.Close()
	repo := repository.NewGenerationRepository(db, nil)

	ok, err := repo.Start(ctx, repository.StartParams{FlowFilename: "flow.xml", JobDescFilename: "desc.json"})
	require.NoError(t, err)
	require.NoError(t, repo.FinishSuccess(ctx, ok.ID, repository.SuccessParams{Company: "Acme", StepCount: 4, Provider: "gemini", Model: "gemini-1.5-flash"}))

	bad, err := repo.Start(ctx, repository.StartParams{FlowFilename: "flow.png"})
	require.NoError(t, err)
	require.NoError(t, repo.FinishFailure(ctx, bad.ID, "tesseract: exit status 1"))

	data, err := NewService(repo, nil).ExportGenerationsXLSX(ctx)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, headers, rows[0])

	byID := map[string][]string{}
	for _, r := range rows[1:] {
		byID[r[0]] = r
	}
	require.Contains(t, byID, ok.ID.String())
	require.Contains(t, byID, bad.ID.String())

	okRow := byID[ok.ID.String()]
	assert.Equal(t, "SUCCEEDED", okRow[1])
	assert.Equal(t, "Acme", okRow[5])
	assert.Equal(t, "4", okRow[6])
	assert.Equal(t, "flow.xml", okRow[7])
	assert.Equal(t, "gemini-1.5-flash", okRow[12])

	badRow := byID[bad.ID.String()]
	assert.Equal(t, "FAILED", badRow[1])
	require.Len(t, badRow, 14)
	assert.Equal(t, "tesseract: exit status 1", badRow[13])
}

func TestExportEmptyHistory(t *testing.T) {
	ctx := context.Background()
	db, err := repository.Open(ctx, repository.Config{DSN: filepath.Join(t.TempDir(), "history.db")}, nil)
	require.NoError(t, err)
	defer db.Close()

	data, err := NewService(repository.NewGenerationRepository(db, nil), nil).ExportGenerationsXLSX(ctx)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab…", truncate("abcdef", 3))
}
