package domain

import "strings"

// HealthStatus grades a single doctor check. Statuses are ordered by severity.
type HealthStatus string

const (
	HealthOK    HealthStatus = "ok"
	HealthWarn  HealthStatus = "warn"
	HealthError HealthStatus = "error"
)

func (s HealthStatus) severity() int {
	switch s {
	case HealthWarn:
		return 1
	case HealthError:
		return 2
	default:
		return 0
	}
}

// Label is the upper-case tag the doctor command prints.
func (s HealthStatus) Label() string {
	return strings.ToUpper(string(s))
}

// HealthCheck is one line of doctor output.
type HealthCheck struct {
	Name    string
	Status  HealthStatus
	Details string
}

// HealthReport collects checks in the order they ran.
type HealthReport struct {
	Checks []HealthCheck
}

// Add appends a check.
func (r *HealthReport) Add(check HealthCheck) {
	r.Checks = append(r.Checks, check)
}

// Worst returns the most severe status, or HealthOK for an empty report.
func (r HealthReport) Worst() HealthStatus {
	worst := HealthOK
	for _, c := range r.Checks {
		if c.Status.severity() > worst.severity() {
			worst = c.Status
		}
	}
	return worst
}

// Healthy reports whether no check failed outright; warnings are tolerated.
func (r HealthReport) Healthy() bool {
	return r.Worst() != HealthError
}
