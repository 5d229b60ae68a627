package domain

import (
	"fmt"
	"strings"
	"time"
)

// AppID is an opaque package identifier understood by the package manager.
type AppID string

// InstallRequest is one batch submitted by the UI shell. Order is significant and
// duplicates are processed independently.
type InstallRequest struct {
	ID   string
	Apps []AppID
}

// Outcome classifies what happened to a single identifier.
type Outcome string

const (
	OutcomeNotAvailable     Outcome = "not_available"
	OutcomeAlreadyInstalled Outcome = "already_installed"
	OutcomeInstalled        Outcome = "installed"
	OutcomeFailed           Outcome = "failed"
)

// Message renders the user-facing outcome line for app.
func (o Outcome) Message(app AppID) string {
	switch o {
	case OutcomeNotAvailable:
		return fmt.Sprintf("The app %s was not found in Winget.", app)
	case OutcomeAlreadyInstalled:
		return fmt.Sprintf("The app %s is already installed.", app)
	case OutcomeInstalled:
		return fmt.Sprintf("Successfully installed %s.", app)
	default:
		return fmt.Sprintf("Failed to install %s.", app)
	}
}

// AppResult is the outcome of processing one identifier.
type AppResult struct {
	App      AppID
	Outcome  Outcome
	Attempts int
	ExitCode int
	Err      error
}

// Message is shorthand for r.Outcome.Message(r.App).
func (r AppResult) Message() string {
	return r.Outcome.Message(r.App)
}

// BatchResult holds one result per requested identifier, in request order.
type BatchResult struct {
	RequestID  string
	Results    []AppResult
	StartedAt  time.Time
	FinishedAt time.Time
}

// Summary joins every outcome line with newlines.
func (b BatchResult) Summary() string {
	lines := make([]string, 0, len(b.Results))
	for _, r := range b.Results {
		lines = append(lines, r.Message())
	}
	return strings.Join(lines, "\n")
}
