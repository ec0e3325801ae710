package sample

import (
	"io"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// Report carries the counters of one batch pull. Skipped records are
// counted here rather than silently dropped, and the whole thing is
// written out at the end of a run.
type Report struct {
	RunID     string `yaml:"run_id"`
	Dataset   string `yaml:"dataset"`
	Year      int    `yaml:"year"`
	Month     int    `yaml:"month"`
	Requested int    `yaml:"requested"`
	Produced  int    `yaml:"produced"`
	// SkippedSchema counts rows dropped under PolicySkip.
	SkippedSchema int       `yaml:"skipped_schema"`
	Shards        int       `yaml:"shards"`
	DupShards     int       `yaml:"duplicate_shards,omitempty"`
	StartedAt     time.Time `yaml:"started_at"`
	FinishedAt    time.Time `yaml:"finished_at"`
}

// WriteYAML renders the report for the run log.
func (r *Report) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(r)
}
