package winget

import (
	"strings"

	"github.com/doeshing/installez/internal/domain"
	"github.com/doeshing/installez/internal/ports"
)

// Classifier reads winget's human-readable output by substring matching.
// This is locale and version sensitive; markers are configurable for that reason.
type Classifier struct {
	notFoundMarker string
	termsMarker    string
}

// NewClassifier creates a Classifier, using winget's English markers for blanks.
func NewClassifier(settings domain.PackageManagerSettings) *Classifier {
	c := &Classifier{
		notFoundMarker: settings.NotFoundMarker,
		termsMarker:    settings.TermsMarker,
	}
	if c.notFoundMarker == "" {
		c.notFoundMarker = domain.DefaultNotFoundMarker
	}
	if c.termsMarker == "" {
		c.termsMarker = domain.DefaultTermsMarker
	}
	return c
}

// NotAvailable reports whether search output says nothing matched. The exit
// code is ignored.
func (c *Classifier) NotAvailable(_ domain.AppID, search domain.ProcessResult) bool {
	return strings.Contains(search.Output, c.notFoundMarker)
}

// AlreadyInstalled reports whether list output mentions the identifier.
func (c *Classifier) AlreadyInstalled(app domain.AppID, list domain.ProcessResult) bool {
	return strings.Contains(list.Output, string(app))
}

// NeedsTermsRetry reports whether any line from either stream mentions the terms marker.
func (c *Classifier) NeedsTermsRetry(attempt domain.InstallAttempt) bool {
	for _, line := range attempt.Lines {
		if strings.Contains(line.Text, c.termsMarker) {
			return true
		}
	}
	return false
}

var _ ports.OutputClassifier = (*Classifier)(nil)
