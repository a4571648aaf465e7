package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/system-prompt-generator/internal/repository"
)

const sheet = "Generations"

// Service produces XLSX bytes of the generation history.
type Service struct {
	repo   repository.GenerationRepository
	logger *slog.Logger
}

func NewService(repo repository.GenerationRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

var headers = []string{
	"Generation ID",
	"Status",
	"Started At",
	"Finished At",
	"Duration (s)",
	"Company",
	"Flow Steps",
	"Flow File",
	"Script File",
	"Job Description File",
	"Job Detail File",
	"Provider",
	"Model",
	"Error",
}

// ExportGenerationsXLSX returns one row per generation, newest first.
func (s *Service) ExportGenerationsXLSX(ctx context.Context) ([]byte, error) {
	start := time.Now()

	gens, err := s.repo.List(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("query generations: %w", err)
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("export.xlsx.close_error", "error", err)
		}
	}()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, g := range gens {
		row := i + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, g.ID.String())
		write(2, string(g.Status))
		write(3, g.StartedAt.Format(time.RFC3339))
		if g.FinishedAt != nil {
			write(4, g.FinishedAt.Format(time.RFC3339))
			write(5, g.Duration().Round(time.Millisecond).Seconds())
		}
		write(6, g.Company)
		write(7, g.StepCount)
		write(8, g.FlowFilename)
		write(9, g.ScriptFilename)
		write(10, g.JobDescFilename)
		write(11, g.JobDetailFilename)
		write(12, g.Provider)
		write(13, g.Model)
		if g.ErrorMessage != nil {
			write(14, truncate(*g.ErrorMessage, 240))
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 38) // id
	_ = f.SetColWidth(sheet, "B", "B", 12) // status
	_ = f.SetColWidth(sheet, "C", "D", 22) // timestamps
	_ = f.SetColWidth(sheet, "F", "F", 28) // company
	_ = f.SetColWidth(sheet, "H", "K", 24) // filenames
	_ = f.SetColWidth(sheet, "N", "N", 60) // error

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(gens),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
