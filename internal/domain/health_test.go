package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHealthReportWorst(t *testing.T) {
	var report HealthReport
	assert.Equal(t, HealthOK, report.Worst())
	assert.True(t, report.Healthy())

	report.Add(HealthCheck{Name: "a", Status: HealthOK})
	report.Add(HealthCheck{Name: "b", Status: HealthWarn})
	assert.Equal(t, HealthWarn, report.Worst())
	assert.True(t, report.Healthy())

	report.Add(HealthCheck{Name: "c", Status: HealthError})
	report.Add(HealthCheck{Name: "d", Status: HealthWarn})
	assert.Equal(t, HealthError, report.Worst())
	assert.False(t, report.Healthy())
	assert.Len(t, report.Checks, 4)
}

func TestHealthStatusLabel(t *testing.T) {
	assert.Equal(t, "WARN", HealthWarn.Label())
	assert.Equal(t, "ERROR", HealthError.Label())
}
