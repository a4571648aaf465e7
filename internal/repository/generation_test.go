package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/system-prompt-generator/constants"
	"github.com/joseph-ayodele/system-prompt-generator/internal/common"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), Config{DSN: filepath.Join(t.TempDir(), "history.db")}, nil)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	return db
}

func TestGenerationLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewGenerationRepository(openTestDB(t), nil)

	g, err := repo.Start(ctx, StartParams{
		FlowFilename:      "flow.xml",
		ScriptFilename:    "example.txt",
		JobDescFilename:   "desc.json",
		JobDetailFilename: "detail.json",
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, g.ID)
	assert.Equal(t, constants.StatusRunning, g.Status)

	require.NoError(t, repo.FinishSuccess(ctx, g.ID, SuccessParams{
		Company:        "Acme",
		StepCount:      3,
		Provider:       "gemini",
		Model:          "gemini-1.5-flash",
		RenderedPrompt: "rendered",
		OutputText:     "final",
		OutputPath:     "outputs/final_prompt.txt",
	}))

	got, err := repo.Get(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.StatusSucceeded, got.Status)
	assert.Equal(t, "flow.xml", got.FlowFilename)
	assert.Equal(t, "detail.json", got.JobDetailFilename)
	assert.Equal(t, "Acme", got.Company)
	assert.Equal(t, 3, got.StepCount)
	assert.Equal(t, "final", got.OutputText)
	assert.Equal(t, "rendered", got.RenderedPrompt)
	assert.Nil(t, got.ErrorMessage)
	require.NotNil(t, got.FinishedAt)
	assert.True(t, got.Finished())
	assert.WithinDuration(t, g.StartedAt, got.StartedAt, time.Microsecond)
}

func TestGenerationFailure(t *testing.T) {
	ctx := context.Background()
	repo := NewGenerationRepository(openTestDB(t), nil)

	id := uuid.New()
	g, err := repo.Start(ctx, StartParams{ID: id, Status: constants.StatusQueued})
	require.NoError(t, err)
	assert.Equal(t, id, g.ID)

	got, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, constants.StatusQueued, got.Status)
	assert.False(t, got.Finished())

	require.NoError(t, repo.MarkRunning(ctx, id))
	require.NoError(t, repo.FinishFailure(ctx, id, "ocr failed"))

	got, err = repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, constants.StatusFailed, got.Status)
	require.NotNil(t, got.ErrorMessage)
	assert.Equal(t, "ocr failed", *got.ErrorMessage)
}

func TestGenerationNotFound(t *testing.T) {
	ctx := context.Background()
	repo := NewGenerationRepository(openTestDB(t), nil)

	_, err := repo.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, common.ErrNotFound)

	err = repo.FinishFailure(ctx, uuid.New(), "x")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestGenerationListNewestFirst(t *testing.T) {
	ctx := context.Background()
	r := NewGenerationRepository(openTestDB(t), nil).(*generationRepo)

	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		ts := base.Add(time.Duration(i) * time.Second)
		r.now = func() time.Time { return ts }
		g, err := r.Start(ctx, StartParams{FlowFilename: "f"})
		require.NoError(t, err)
		ids = append(ids, g.ID)
	}

	all, err := r.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []uuid.UUID{ids[2], ids[1], ids[0]}, []uuid.UUID{all[0].ID, all[1].ID, all[2].ID})

	limited, err := r.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestDialectAndRebind(t *testing.T) {
	assert.Equal(t, DialectPostgres, dialectFor("postgres://u:p@localhost/db"))
	assert.Equal(t, DialectPostgres, dialectFor("postgresql://localhost/db"))
	assert.Equal(t, DialectSQLite, dialectFor("file:promptgen.db"))

	pg := &DB{Dialect: DialectPostgres}
	assert.Equal(t, "UPDATE t SET a = $1 WHERE id = $2", pg.rebind("UPDATE t SET a = ? WHERE id = ?"))
	lite := &DB{Dialect: DialectSQLite}
	assert.Equal(t, "SELECT ?", lite.rebind("SELECT ?"))
}
