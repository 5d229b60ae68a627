package commands

import "github.com/doeshing/installez/internal/domain"

// Error messages
const (
	ErrConfigLoaderUnavailable  = "config loader unavailable"
	ErrDoctorServiceUnavailable = "doctor service unavailable"
	ErrInstallerUnavailable     = "installer unavailable"
	ErrHistoryDisabled          = "history is disabled; set history.enabled: true in the config"
	ErrNoApps                   = "no application identifiers given"
)

// Success messages
const (
	MsgNoHistoryRecorded = "No history recorded yet."
	MsgHistoryCleared    = "History cleared."
)

// Defaults
const (
	DefaultHistoryLimit = domain.DefaultHistoryLimit
	TimestampFormat     = domain.TimestampFormat
)
