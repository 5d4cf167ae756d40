package datalake

import (
	"fmt"
	"strings"
	"time"
)

// Outcome is the per-step result recorded in the run report. Already-exists
// is a success, not an error.
type Outcome string

const (
	OutcomeCreated       Outcome = "created"
	OutcomeAlreadyExists Outcome = "already-exists"
	OutcomeReady         Outcome = "ready"
	OutcomeConfigured    Outcome = "configured"
	OutcomeUploaded      Outcome = "uploaded"
	OutcomeFetched       Outcome = "fetched"
	OutcomeEmpty         Outcome = "empty"
	OutcomeDegraded      Outcome = "degraded"
	OutcomeSkipped       Outcome = "skipped"
	OutcomeFailed        Outcome = "failed"
)

// StepResult records how one pipeline step ended.
type StepResult struct {
	Name     string        `json:"name"`
	Outcome  Outcome       `json:"outcome"`
	Detail   string        `json:"detail,omitempty"`
	Err      string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration_ns"`
}

// RunReport is the structured record of one pipeline run. The process
// completing does not mean every step succeeded; check Failed.
type RunReport struct {
	StartedAt   time.Time    `json:"started_at"`
	FinishedAt  time.Time    `json:"finished_at"`
	Steps       []StepResult `json:"steps"`
	DataRecords int          `json:"data_records"`
}

func (r *RunReport) add(s StepResult) {
	r.Steps = append(r.Steps, s)
}

// Failed reports whether any step failed.
func (r *RunReport) Failed() bool {
	for _, s := range r.Steps {
		if s.Outcome == OutcomeFailed {
			return true
		}
	}
	return false
}

// Step returns the result for the named step, if it ran.
func (r *RunReport) Step(name string) (StepResult, bool) {
	for _, s := range r.Steps {
		if s.Name == name {
			return s, true
		}
	}
	return StepResult{}, false
}

// Summary renders the report as plain text, one line per step.
func (r *RunReport) Summary() string {
	lines := []string{
		"Data lake setup report",
		"",
		fmt.Sprintf("Started:  %s", r.StartedAt.Format(time.RFC3339)),
		fmt.Sprintf("Finished: %s", r.FinishedAt.Format(time.RFC3339)),
		fmt.Sprintf("Records:  %d", r.DataRecords),
		"",
	}
	for _, s := range r.Steps {
		line := fmt.Sprintf("%-18s %s", s.Name, s.Outcome)
		if s.Detail != "" {
			line += " " + s.Detail
		}
		if s.Err != "" {
			line += " (" + s.Err + ")"
		}
		lines = append(lines, line)
	}
	if r.Failed() {
		lines = append(lines, "", "One or more steps failed; provisioning is incomplete.")
	}
	return strings.Join(lines, "\n") + "\n"
}
