package domain

import "time"

// BatchRecord is a persisted batch with its per-app outcomes.
type BatchRecord struct {
	ID         string      `json:"id"`
	StartedAt  time.Time   `json:"started_at"`
	FinishedAt time.Time   `json:"finished_at"`
	Apps       []AppRecord `json:"apps"`
}

// AppRecord is one identifier's row inside a BatchRecord.
type AppRecord struct {
	Position int     `json:"position"`
	App      AppID   `json:"app"`
	Outcome  Outcome `json:"outcome"`
	Attempts int     `json:"attempts"`
	ExitCode int     `json:"exit_code"`
	Error    string  `json:"error,omitempty"`
}

// NewBatchRecord flattens a BatchResult for storage.
func NewBatchRecord(res BatchResult) BatchRecord {
	rec := BatchRecord{
		ID:         res.RequestID,
		StartedAt:  res.StartedAt,
		FinishedAt: res.FinishedAt,
		Apps:       make([]AppRecord, 0, len(res.Results)),
	}
	for i, r := range res.Results {
		app := AppRecord{
			Position: i,
			App:      r.App,
			Outcome:  r.Outcome,
			Attempts: r.Attempts,
			ExitCode: r.ExitCode,
		}
		if r.Err != nil {
			app.Error = r.Err.Error()
		}
		rec.Apps = append(rec.Apps, app)
	}
	return rec
}
