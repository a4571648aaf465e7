package constants

// GenerationStatus is the canonical status for rows in the generation table.
type GenerationStatus string

// Stable values (store these exact strings in DB).
const (
	StatusQueued    GenerationStatus = "QUEUED"    // accepted, waiting for a worker
	StatusRunning   GenerationStatus = "RUNNING"   // in progress
	StatusSucceeded GenerationStatus = "SUCCEEDED" // document generated and persisted
	StatusFailed    GenerationStatus = "FAILED"    // terminal failure
)
