// Package ports defines the interfaces (ports) for the hexagonal architecture.
//
// The installer core depends only on these contracts. Concrete adapters live in
// the infrastructure layer: the package manager CLI, the subprocess executor,
// the UI shells (HTTP bridge, stdio, direct CLI) and the optional history store.
//
// Key architectural concepts:
//   - Ports: Interfaces defined here (e.g., PackageManager, Shell)
//   - Adapters: Concrete implementations in the infrastructure layer
//   - Dependency inversion: Application depends on abstractions, not implementations
package ports

import (
	"context"

	"github.com/doeshing/installez/internal/domain"
)

// ConfigProvider loads the latest configuration from persistent storage.
// Implementations typically read from ~/.installez/config.yaml.
type ConfigProvider interface {
	Load(context.Context) (domain.Config, error)
}

// ProcessExecutor spawns subprocesses. Non-zero exit codes are reported in the
// result, errors are reserved for failures to start or talk to the process.
type ProcessExecutor interface {
	// Output runs name with args and returns everything it wrote to stdout.
	// Stderr is discarded so diagnostics never reach the classifier.
	Output(ctx context.Context, name string, args ...string) (domain.ProcessResult, error)
	// Stream runs name with args, calling onLine for every non-empty line as it
	// is read. Lines from one pipe arrive in order; the two pipes interleave
	// arbitrarily. onLine is never called after Stream returns.
	Stream(ctx context.Context, onLine func(domain.OutputLine), name string, args ...string) (domain.InstallAttempt, error)
}

// PackageManager wraps the three package manager invocations the installer needs.
type PackageManager interface {
	Name() string
	Search(ctx context.Context, app domain.AppID) (domain.ProcessResult, error)
	List(ctx context.Context, app domain.AppID) (domain.ProcessResult, error)
	Install(ctx context.Context, app domain.AppID, onLine func(domain.OutputLine)) (domain.InstallAttempt, error)
}

// OutputClassifier interprets package manager text. Swapping it lets structured
// output replace substring matching without touching orchestration.
type OutputClassifier interface {
	NotAvailable(app domain.AppID, search domain.ProcessResult) bool
	AlreadyInstalled(app domain.AppID, list domain.ProcessResult) bool
	NeedsTermsRetry(attempt domain.InstallAttempt) bool
}

// Shell is the outbound half of the UI message bus.
type Shell interface {
	// Emit relays one status line (streamed output or the batch summary).
	Emit(line string)
	// Alert surfaces a blocking, user-facing error on a channel distinct from Emit.
	Alert(message string)
}

// SummaryShell is implemented by shells that label the final batch summary
// differently from streamed lines. Shells without it receive the summary via Emit.
type SummaryShell interface {
	Shell
	EmitSummary(summary string)
}

// BatchSource is the inbound half of the UI message bus. It returns io.EOF when
// no more batches will arrive.
type BatchSource interface {
	ReceiveBatch(ctx context.Context) (domain.InstallRequest, error)
}

// BatchRunner processes one batch end to end.
type BatchRunner interface {
	Process(ctx context.Context, req domain.InstallRequest, shell Shell) (domain.BatchResult, error)
}

// HistoryRepository persists finished batches.
type HistoryRepository interface {
	Save(ctx context.Context, rec domain.BatchRecord) error
	Batches(ctx context.Context, limit int) ([]domain.BatchRecord, error)
	Clear(ctx context.Context) error
	Path() string
}

// Logger provides structured logging abstraction for the application layer.
// Implementations can route to different backends (stdout, files, external services).
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error, fields map[string]interface{})
}
