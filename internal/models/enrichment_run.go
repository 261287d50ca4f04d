package models

import "time"

// EnrichmentRun records one execution of the collision enrichment pipeline
type EnrichmentRun struct {
	ID int64 `json:"id" db:"id"`

	Status string `json:"status" db:"status"` // running, completed, failed

	// Inputs
	CollisionsPath string `json:"collisions_path" db:"collisions_path"`
	PartiesPath    string `json:"parties_path" db:"parties_path"`
	VictimsPath    string `json:"victims_path" db:"victims_path"`
	OutputPath     string `json:"output_path" db:"output_path"`
	JoinPolicy     string `json:"join_policy" db:"join_policy"`

	// Row counts
	CollisionRows int `json:"collision_rows" db:"collision_rows"`
	VictimRows    int `json:"victim_rows" db:"victim_rows"`
	PartyRows     int `json:"party_rows" db:"party_rows"`
	OutputRows    int `json:"output_rows" db:"output_rows"`

	ErrorMessage string     `json:"error_message,omitempty" db:"error_message"`
	StartedAt    time.Time  `json:"started_at" db:"started_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty" db:"completed_at"`
}

// RunStatus constants
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)
