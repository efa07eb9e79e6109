// Package results records the outcome of a pipeline run as a YAML report.
package results

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"paper-translator/internal/failures"
	"paper-translator/internal/storage"
)

// Status is the outcome of one document.
type Status string

const (
	// StatusProcessed indicates the translated output was written
	StatusProcessed Status = "processed"
	// StatusSkipped indicates the output already existed
	StatusSkipped Status = "skipped"
	// StatusFailed indicates a per-document error; no output was written
	StatusFailed Status = "failed"
)

// DocumentResult is the outcome of one document.
type DocumentResult struct {
	Name     string         `yaml:"name"`
	Status   Status         `yaml:"status"`
	Stage    failures.Stage `yaml:"stage,omitempty"`
	Error    string         `yaml:"error,omitempty"`
	Chunks   int            `yaml:"chunks,omitempty"`
	Pages    int            `yaml:"pages,omitempty"`
	Duration time.Duration  `yaml:"duration,omitempty"`
}

// Summary counts documents by status.
type Summary struct {
	Total     int `yaml:"total"`
	Processed int `yaml:"processed"`
	Skipped   int `yaml:"skipped"`
	Failed    int `yaml:"failed"`
}

// Report describes one run.
type Report struct {
	RunID      string           `yaml:"run_id"`
	StartedAt  time.Time        `yaml:"started_at"`
	FinishedAt time.Time        `yaml:"finished_at,omitempty"`
	InputDir   string           `yaml:"input_dir"`
	OutputDir  string           `yaml:"output_dir"`
	Summary    Summary          `yaml:"summary"`
	Documents  []DocumentResult `yaml:"documents"`

	mu sync.Mutex
}

// NewReport starts a report for a run over inputDir.
func NewReport(inputDir, outputDir string) *Report {
	return &Report{
		RunID:     uuid.New().String(),
		StartedAt: time.Now(),
		InputDir:  inputDir,
		OutputDir: outputDir,
		Documents: []DocumentResult{},
	}
}

// Add appends a document result and updates the summary.
func (r *Report) Add(result DocumentResult) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Documents = append(r.Documents, result)
	r.Summary.Total++
	switch result.Status {
	case StatusProcessed:
		r.Summary.Processed++
	case StatusSkipped:
		r.Summary.Skipped++
	case StatusFailed:
		r.Summary.Failed++
	}
}

// Finish stamps the finish time.
func (r *Report) Finish() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.FinishedAt = time.Now()
}

// Failed returns the failed documents in processing order.
func (r *Report) Failed() []DocumentResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	var failed []DocumentResult
	for _, d := range r.Documents {
		if d.Status == StatusFailed {
			failed = append(failed, d)
		}
	}
	return failed
}

// HasFailures reports whether any document failed.
func (r *Report) HasFailures() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Summary.Failed > 0
}

// String renders the one-line summary printed at the end of a run.
func (s Summary) String() string {
	return fmt.Sprintf("%d documents: %d processed, %d skipped, %d failed",
		s.Total, s.Processed, s.Skipped, s.Failed)
}

// Save writes the report as YAML.
func (r *Report) Save(path string) error {
	r.mu.Lock()
	data, err := yaml.Marshal(r)
	r.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	return storage.WriteFileAtomic(path, data)
}

// Load reads a report written by Save.
func Load(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}
	var r Report
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report: %w", err)
	}
	return &r, nil
}
