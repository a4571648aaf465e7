package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/system-prompt-generator/constants"
)

// Generation is one prompt-generation run for data transfer between layers.
type Generation struct {
	ID                uuid.UUID                  `json:"id"`
	Status            constants.GenerationStatus `json:"status"`
	FlowFilename      string                     `json:"flow_filename"`
	ScriptFilename    string                     `json:"script_filename"`
	JobDescFilename   string                     `json:"job_desc_filename"`
	JobDetailFilename string                     `json:"job_detail_filename"`
	Company           string                     `json:"company,omitempty"`
	StepCount         int                        `json:"step_count"`
	Provider          string                     `json:"provider,omitempty"`
	Model             string                     `json:"model,omitempty"`
	RenderedPrompt    string                     `json:"-"`
	OutputText        string                     `json:"-"`
	OutputPath        string                     `json:"output_path,omitempty"`
	ErrorMessage      *string                    `json:"error_message,omitempty"`
	StartedAt         time.Time                  `json:"started_at"`
	FinishedAt        *time.Time                 `json:"finished_at,omitempty"`
}

// Finished reports whether the run reached a terminal status.
func (g *Generation) Finished() bool {
	return g.Status == constants.StatusSucceeded || g.Status == constants.StatusFailed
}

// Duration is the wall time of a finished run, zero otherwise.
func (g *Generation) Duration() time.Duration {
	if g.FinishedAt == nil {
		return 0
	}
	return g.FinishedAt.Sub(g.StartedAt)
}
