package winget

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/doeshing/installez/internal/domain"
)

func TestClassifierNotAvailable(t *testing.T) {
	c := NewClassifier(domain.PackageManagerSettings{})

	assert.True(t, c.NotAvailable("X", domain.ProcessResult{Output: "No package found matching input criteria.", ExitCode: 1}))
	assert.False(t, c.NotAvailable("X", domain.ProcessResult{Output: "Name  Id  Version\nX     X   1.0"}))
	// exit code alone does not decide availability
	assert.False(t, c.NotAvailable("X", domain.ProcessResult{Output: "", ExitCode: 1}))
}

func TestClassifierAlreadyInstalled(t *testing.T) {
	c := NewClassifier(domain.PackageManagerSettings{})

	assert.True(t, c.AlreadyInstalled("Git.Git", domain.ProcessResult{Output: "Git  Git.Git  2.44.0  winget"}))
	assert.False(t, c.AlreadyInstalled("Git.Git", domain.ProcessResult{Output: "No installed package found matching input criteria."}))
}

func TestClassifierTermsRetry(t *testing.T) {
	c := NewClassifier(domain.PackageManagerSettings{})

	stderr := domain.InstallAttempt{Lines: []domain.OutputLine{
		{Stream: domain.StreamStdout, Text: "Found X"},
		{Stream: domain.StreamStderr, Text: "You must accept the Terms of Service"},
	}}
	assert.True(t, c.NeedsTermsRetry(stderr))
	assert.False(t, c.NeedsTermsRetry(domain.InstallAttempt{Lines: []domain.OutputLine{{Text: "Successfully installed"}}}))
	assert.False(t, c.NeedsTermsRetry(domain.InstallAttempt{}))
}

func TestClassifierCustomMarkers(t *testing.T) {
	c := NewClassifier(domain.PackageManagerSettings{
		NotFoundMarker: "Aucun package",
		TermsMarker:    "Conditions d'utilisation",
	})

	assert.True(t, c.NotAvailable("X", domain.ProcessResult{Output: "Aucun package ne correspond"}))
	assert.False(t, c.NotAvailable("X", domain.ProcessResult{Output: "No package found"}))
	assert.True(t, c.NeedsTermsRetry(domain.InstallAttempt{Lines: []domain.OutputLine{{Text: "Conditions d'utilisation"}}}))
}
