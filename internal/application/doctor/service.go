package doctor

import (
	"context"
	"fmt"
	"runtime"

	"github.com/doeshing/installez/internal/domain"
	"github.com/doeshing/installez/internal/ports"
)

// ExecutableLocator resolves the package manager binary.
type ExecutableLocator interface {
	Name() string
	LookPath() (string, error)
}

// Service runs environment diagnostics.
type Service struct {
	ConfigProvider ports.ConfigProvider
	PackageManager ExecutableLocator
	History        ports.HistoryRepository

	goos string
}

// Run executes checks and returns a report.
func (s *Service) Run(ctx context.Context) (domain.HealthReport, error) {
	var report domain.HealthReport

	cfg, err := s.ConfigProvider.Load(ctx)
	if err != nil {
		report.Add(fail("Config file", fmt.Sprintf("load failed: %v", err)))
		return report, err
	}
	report.Add(ok("Config file", fmt.Sprintf("format version %s", cfg.ConfigFormatVersion)))
	report.Add(s.packageManagerCheck())
	report.Add(s.platformCheck(cfg))
	report.Add(timeoutCheck(cfg))
	report.Add(s.historyCheck(ctx, cfg))
	return report, nil
}

func (s *Service) packageManagerCheck() domain.HealthCheck {
	if s.PackageManager == nil {
		return warn("Package manager", "not initialized")
	}
	path, err := s.PackageManager.LookPath()
	if err != nil {
		return fail("Package manager", fmt.Sprintf("%s not found: %v", s.PackageManager.Name(), err))
	}
	return ok("Package manager", path)
}

func (s *Service) platformCheck(cfg domain.Config) domain.HealthCheck {
	goos := s.goos
	if goos == "" {
		goos = runtime.GOOS
	}
	if goos != "windows" && cfg.PackageManager.Executable == domain.DefaultExecutable {
		return warn("Platform", fmt.Sprintf("winget only ships on Windows, running on %s", goos))
	}
	return ok("Platform", goos)
}

func timeoutCheck(cfg domain.Config) domain.HealthCheck {
	if cfg.Executor.Timeout <= 0 {
		return warn("Executor timeout", "none; a hung package manager stalls the batch")
	}
	return ok("Executor timeout", cfg.Executor.Timeout.String())
}

func (s *Service) historyCheck(ctx context.Context, cfg domain.Config) domain.HealthCheck {
	if !cfg.History.Enabled {
		return ok("History", "disabled")
	}
	if s.History == nil {
		return fail("History", "enabled but store unavailable")
	}
	if _, err := s.History.Batches(ctx, 1); err != nil {
		return fail("History", err.Error())
	}
	return ok("History", s.History.Path())
}

func ok(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthOK, Details: details}
}

func warn(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthWarn, Details: details}
}

func fail(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthError, Details: details}
}
