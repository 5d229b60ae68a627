// Package winget drives a winget-compatible package manager CLI.
//
// Only three invocations are used: "search <id>", "list <id>" and
// "install <id> <flags...>". Their text output is interpreted by Classifier.
package winget

import (
	"context"
	"os/exec"
	"path/filepath"

	"github.com/doeshing/installez/internal/domain"
	"github.com/doeshing/installez/internal/ports"
)

// Manager implements ports.PackageManager on top of a ports.ProcessExecutor.
type Manager struct {
	executor     ports.ProcessExecutor
	executable   string
	installFlags []string
}

// NewManager creates a Manager from package manager settings, filling defaults.
func NewManager(executor ports.ProcessExecutor, settings domain.PackageManagerSettings) *Manager {
	executable := settings.Executable
	if executable == "" {
		executable = domain.DefaultExecutable
	}
	flags := settings.InstallFlags
	if flags == nil {
		flags = domain.DefaultInstallFlags
	}
	return &Manager{
		executor:     executor,
		executable:   executable,
		installFlags: append([]string(nil), flags...),
	}
}

// Name returns the executable's base name.
func (m *Manager) Name() string {
	return filepath.Base(m.executable)
}

// Executable returns the configured executable as given.
func (m *Manager) Executable() string {
	return m.executable
}

// Search runs "search <id>".
func (m *Manager) Search(ctx context.Context, app domain.AppID) (domain.ProcessResult, error) {
	return m.executor.Output(ctx, m.executable, SearchArgs(app)...)
}

// List runs "list <id>".
func (m *Manager) List(ctx context.Context, app domain.AppID) (domain.ProcessResult, error) {
	return m.executor.Output(ctx, m.executable, ListArgs(app)...)
}

// Install runs "install <id>" with the configured flags, streaming output to onLine.
// Each call spawns a fresh process.
func (m *Manager) Install(ctx context.Context, app domain.AppID, onLine func(domain.OutputLine)) (domain.InstallAttempt, error) {
	return m.executor.Stream(ctx, onLine, m.executable, InstallArgs(app, m.installFlags)...)
}

// LookPath resolves the executable on PATH.
func (m *Manager) LookPath() (string, error) {
	return exec.LookPath(m.executable)
}

// SearchArgs builds the availability check arguments.
func SearchArgs(app domain.AppID) []string {
	return []string{"search", string(app)}
}

// ListArgs builds the installed check arguments.
func ListArgs(app domain.AppID) []string {
	return []string{"list", string(app)}
}

// InstallArgs builds the install arguments.
func InstallArgs(app domain.AppID, flags []string) []string {
	args := make([]string, 0, 2+len(flags))
	args = append(args, "install", string(app))
	return append(args, flags...)
}

var _ ports.PackageManager = (*Manager)(nil)
