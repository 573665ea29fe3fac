package metrics

import "time"

// Report is the final artifact of a comparison run: every phase result in
// execution order plus the ranked view. Written once when the run ends.
type Report struct {
	RunID     string        `json:"run_id"`
	Target    string        `json:"target"`
	StartedAt time.Time     `json:"started_at"`
	Phases    []PhaseResult `json:"phases"`
	Ranking   []PhaseResult `json:"ranking"`
}

// BuildReport assembles a Report, computing the ranked view from the
// execution-ordered phase results.
func BuildReport(runID, target string, startedAt time.Time, phases []PhaseResult) Report {
	return Report{
		RunID:     runID,
		Target:    target,
		StartedAt: startedAt,
		Phases:    phases,
		Ranking:   Rank(phases),
	}
}
