package install

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/doeshing/installez/internal/domain"
	"github.com/doeshing/installez/internal/ports"
)

// Service orchestrates the per-app search, list, install sequence for a batch.
type Service struct {
	PackageManager ports.PackageManager
	Classifier     ports.OutputClassifier
	Logger         ports.Logger
	// History is optional; nil disables persistence.
	History ports.HistoryRepository
	// ReportMalformed emits a status line for undecodable requests instead of
	// dropping them silently.
	ReportMalformed bool

	now func() time.Time
}

// Process runs every identifier of req in order, one at a time. Streamed output
// and alerts go to shell as they happen; the newline-joined summary is emitted
// last. The returned error only reports unsatisfied dependencies.
func (s *Service) Process(ctx context.Context, req domain.InstallRequest, shell ports.Shell) (domain.BatchResult, error) {
	if s.PackageManager == nil || s.Classifier == nil || s.Logger == nil {
		return domain.BatchResult{}, errors.New("install.Service dependencies not satisfied")
	}
	if shell == nil {
		return domain.BatchResult{}, errors.New("install.Service requires a shell")
	}

	res := domain.BatchResult{
		RequestID: req.ID,
		Results:   make([]domain.AppResult, 0, len(req.Apps)),
		StartedAt: s.clock(),
	}
	s.Logger.Info("batch started", map[string]interface{}{
		"batch": req.ID,
		"apps":  len(req.Apps),
	})

	for _, app := range req.Apps {
		r := s.processApp(ctx, app, shell)
		s.Logger.Debug("app processed", map[string]interface{}{
			"batch":    req.ID,
			"app":      string(app),
			"outcome":  string(r.Outcome),
			"attempts": r.Attempts,
		})
		res.Results = append(res.Results, r)
	}
	res.FinishedAt = s.clock()

	emitSummary(shell, res.Summary())

	if s.History != nil {
		// a cancelled batch still emitted its summary, so it is recorded too
		if err := s.History.Save(context.WithoutCancel(ctx), domain.NewBatchRecord(res)); err != nil {
			s.Logger.Warn("history save failed", map[string]interface{}{"batch": req.ID, "error": err.Error()})
		}
	}
	return res, nil
}

// Serve pulls batches from source until it reports io.EOF or ctx ends.
// Malformed requests are logged and skipped.
func (s *Service) Serve(ctx context.Context, source ports.BatchSource, shell ports.Shell) error {
	for {
		req, err := source.ReceiveBatch(ctx)
		switch {
		case errors.Is(err, io.EOF):
			return nil
		case errors.Is(err, ErrMalformedRequest):
			s.rejectMalformed(shell, err)
			continue
		case err != nil:
			return err
		}
		if _, err := s.Process(ctx, req, shell); err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
}

func (s *Service) rejectMalformed(shell ports.Shell, err error) {
	if s.Logger != nil {
		s.Logger.Warn("dropping malformed install request", map[string]interface{}{"error": err.Error()})
	}
	if s.ReportMalformed {
		shell.Emit(MalformedStatus(err))
	}
}

// MalformedStatus is the status line emitted when ReportMalformed is set.
func MalformedStatus(err error) string {
	return fmt.Sprintf("Could not read install request: %v", err)
}

func (s *Service) processApp(ctx context.Context, app domain.AppID, shell ports.Shell) domain.AppResult {
	if err := ctx.Err(); err != nil {
		return domain.AppResult{App: app, Outcome: domain.OutcomeFailed, Err: err}
	}

	search, err := s.PackageManager.Search(ctx, app)
	if err != nil {
		return s.failure(ctx, shell, app, 0, fmt.Sprintf("checking if %s is available", app), err)
	}
	if s.Classifier.NotAvailable(app, search) {
		return domain.AppResult{App: app, Outcome: domain.OutcomeNotAvailable, ExitCode: search.ExitCode}
	}

	list, err := s.PackageManager.List(ctx, app)
	if err != nil {
		return s.failure(ctx, shell, app, 0, fmt.Sprintf("checking if %s is installed", app), err)
	}
	if s.Classifier.AlreadyInstalled(app, list) {
		return domain.AppResult{App: app, Outcome: domain.OutcomeAlreadyInstalled, ExitCode: list.ExitCode}
	}

	relay := func(line domain.OutputLine) {
		shell.Emit(line.StatusText())
	}

	attempts := 1
	attempt, err := s.PackageManager.Install(ctx, app, relay)
	if err != nil {
		return s.failure(ctx, shell, app, attempts, fmt.Sprintf("installing %s", app), err)
	}

	if s.Classifier.NeedsTermsRetry(attempt) {
		s.Logger.Info("terms of service prompt detected, retrying install", map[string]interface{}{
			"app":       string(app),
			"exit_code": attempt.ExitCode,
		})
		attempts++
		attempt, err = s.PackageManager.Install(ctx, app, relay)
		if err != nil {
			return s.failure(ctx, shell, app, attempts, fmt.Sprintf("installing %s", app), err)
		}
	}

	outcome := domain.OutcomeFailed
	if attempt.Succeeded() {
		outcome = domain.OutcomeInstalled
	}
	return domain.AppResult{App: app, Outcome: outcome, Attempts: attempts, ExitCode: attempt.ExitCode}
}

// failure alerts the shell about a launch or I/O error and classifies the app as
// failed. Cancellation is not alerted.
func (s *Service) failure(ctx context.Context, shell ports.Shell, app domain.AppID, attempts int, action string, err error) domain.AppResult {
	if ctx.Err() == nil {
		shell.Alert(fmt.Sprintf("An error occurred while %s: %v", action, err))
	}
	s.Logger.Error("package manager invocation failed", err, map[string]interface{}{
		"app":    string(app),
		"action": action,
	})
	return domain.AppResult{
		App:      app,
		Outcome:  domain.OutcomeFailed,
		Attempts: attempts,
		ExitCode: -1,
		Err:      err,
	}
}

func emitSummary(shell ports.Shell, summary string) {
	if ss, ok := shell.(ports.SummaryShell); ok {
		ss.EmitSummary(summary)
		return
	}
	shell.Emit(summary)
}

func (s *Service) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

var _ ports.BatchRunner = (*Service)(nil)
