package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/system-prompt-generator/constants"
	"github.com/joseph-ayodele/system-prompt-generator/internal/common"
	"github.com/joseph-ayodele/system-prompt-generator/internal/entity"
)

// Fixed width so text ordering matches time ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// StartParams describes a new run. A zero ID is replaced with a fresh one.
type StartParams struct {
	ID                uuid.UUID
	Status            constants.GenerationStatus
	FlowFilename      string
	ScriptFilename    string
	JobDescFilename   string
	JobDetailFilename string
}

// SuccessParams is what a finished run records.
type SuccessParams struct {
	Company        string
	StepCount      int
	Provider       string
	Model          string
	RenderedPrompt string
	OutputText     string
	OutputPath     string
}

type GenerationRepository interface {
	Start(ctx context.Context, p StartParams) (*entity.Generation, error)
	MarkRunning(ctx context.Context, id uuid.UUID) error
	FinishSuccess(ctx context.Context, id uuid.UUID, p SuccessParams) error
	FinishFailure(ctx context.Context, id uuid.UUID, message string) error
	Get(ctx context.Context, id uuid.UUID) (*entity.Generation, error)
	List(ctx context.Context, limit int) ([]*entity.Generation, error)
}

type generationRepo struct {
	db  *DB
	log *slog.Logger
	now func() time.Time
}

func NewGenerationRepository(db *DB, log *slog.Logger) GenerationRepository {
	if log == nil {
		log = slog.Default()
	}
	return &generationRepo{db: db, log: log, now: time.Now}
}

func (r *generationRepo) Start(ctx context.Context, p StartParams) (*entity.Generation, error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Status == "" {
		p.Status = constants.StatusRunning
	}
	g := &entity.Generation{
		ID:                p.ID,
		Status:            p.Status,
		FlowFilename:      p.FlowFilename,
		ScriptFilename:    p.ScriptFilename,
		JobDescFilename:   p.JobDescFilename,
		JobDetailFilename: p.JobDetailFilename,
		StartedAt:         r.now().UTC(),
	}

	_, err := r.db.SQL.ExecContext(ctx, r.db.rebind(`INSERT INTO generations
		(id, status, flow_filename, script_filename, job_desc_filename, job_detail_filename, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`),
		g.ID.String(), string(g.Status), g.FlowFilename, g.ScriptFilename,
		g.JobDescFilename, g.JobDetailFilename, g.StartedAt.Format(timeLayout))
	if err != nil {
		r.log.Error("generation start failed", "generation_id", g.ID, "err", err)
		return nil, fmt.Errorf("%w: insert generation: %v", common.ErrDatabase, err)
	}
	r.log.Info("generation started", "generation_id", g.ID, "status", g.Status)
	return g, nil
}

func (r *generationRepo) MarkRunning(ctx context.Context, id uuid.UUID) error {
	return r.update(ctx, id, `UPDATE generations SET status = ? WHERE id = ?`,
		string(constants.StatusRunning), id.String())
}

func (r *generationRepo) FinishSuccess(ctx context.Context, id uuid.UUID, p SuccessParams) error {
	err := r.update(ctx, id, `UPDATE generations SET
		status = ?, company = ?, step_count = ?, provider = ?, model = ?,
		rendered_prompt = ?, output_text = ?, output_path = ?, finished_at = ?
		WHERE id = ?`,
		string(constants.StatusSucceeded), p.Company, p.StepCount, p.Provider, p.Model,
		p.RenderedPrompt, p.OutputText, p.OutputPath, r.now().UTC().Format(timeLayout),
		id.String())
	if err != nil {
		r.log.Error("generation finish(OK) failed", "generation_id", id, "err", err)
		return err
	}
	r.log.Info("generation finished (SUCCEEDED)", "generation_id", id, "model", p.Model)
	return nil
}

func (r *generationRepo) FinishFailure(ctx context.Context, id uuid.UUID, message string) error {
	err := r.update(ctx, id, `UPDATE generations SET status = ?, error_message = ?, finished_at = ? WHERE id = ?`,
		string(constants.StatusFailed), message, r.now().UTC().Format(timeLayout), id.String())
	if err != nil {
		r.log.Error("generation finish(FAILED) failed", "generation_id", id, "err", err)
		return err
	}
	r.log.Warn("generation finished (FAILED)", "generation_id", id, "error", message)
	return nil
}

func (r *generationRepo) update(ctx context.Context, id uuid.UUID, query string, args ...any) error {
	res, err := r.db.SQL.ExecContext(ctx, r.db.rebind(query), args...)
	if err != nil {
		return fmt.Errorf("%w: update generation %s: %v", common.ErrDatabase, id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.NewAppError("NOT_FOUND", fmt.Sprintf("generation %s not found", id), common.ErrNotFound)
	}
	return nil
}

const selectColumns = `id, status, flow_filename, script_filename, job_desc_filename, job_detail_filename,
	company, step_count, provider, model, rendered_prompt, output_text, output_path,
	error_message, started_at, finished_at`

func (r *generationRepo) Get(ctx context.Context, id uuid.UUID) (*entity.Generation, error) {
	row := r.db.SQL.QueryRowContext(ctx, r.db.rebind(`SELECT `+selectColumns+` FROM generations WHERE id = ?`), id.String())
	g, err := scanGeneration(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NewAppError("NOT_FOUND", fmt.Sprintf("generation %s not found", id), common.ErrNotFound)
	}
	if err != nil {
		r.log.Error("failed to get generation", "generation_id", id, "error", err)
		return nil, fmt.Errorf("%w: get generation: %v", common.ErrDatabase, err)
	}
	return g, nil
}

// List returns the newest runs first. A non-positive limit returns all rows.
func (r *generationRepo) List(ctx context.Context, limit int) ([]*entity.Generation, error) {
	query := `SELECT ` + selectColumns + ` FROM generations ORDER BY started_at DESC, id`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := r.db.SQL.QueryContext(ctx, r.db.rebind(query), args...)
	if err != nil {
		r.log.Error("failed to list generations", "error", err)
		return nil, fmt.Errorf("%w: list generations: %v", common.ErrDatabase, err)
	}
	defer rows.Close()

	var out []*entity.Generation
	for rows.Next() {
		g, err := scanGeneration(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan generation: %v", common.ErrDatabase, err)
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list generations: %v", common.ErrDatabase, err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanGeneration(s scanner) (*entity.Generation, error) {
	var (
		g        entity.Generation
		id       string
		status   string
		errMsg   sql.NullString
		started  string
		finished sql.NullString
	)
	if err := s.Scan(&id, &status, &g.FlowFilename, &g.ScriptFilename, &g.JobDescFilename, &g.JobDetailFilename,
		&g.Company, &g.StepCount, &g.Provider, &g.Model, &g.RenderedPrompt, &g.OutputText, &g.OutputPath,
		&errMsg, &started, &finished); err != nil {
		return nil, err
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("bad generation id %q: %w", id, err)
	}
	g.ID = parsed
	g.Status = constants.GenerationStatus(status)
	if errMsg.Valid {
		g.ErrorMessage = &errMsg.String
	}
	if g.StartedAt, err = time.Parse(timeLayout, started); err != nil {
		return nil, fmt.Errorf("bad started_at %q: %w", started, err)
	}
	if finished.Valid {
		t, err := time.Parse(timeLayout, finished.String)
		if err != nil {
			return nil, fmt.Errorf("bad finished_at %q: %w", finished.String, err)
		}
		g.FinishedAt = &t
	}
	return &g, nil
}
