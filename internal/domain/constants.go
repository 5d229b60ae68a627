package domain

import "time"

// File permissions constants
const (
	// DirectoryPermissions is the default permission for directories (rwxr-xr-x)
	DirectoryPermissions = 0o755
	// SecureFilePermissions is the permission for config and database files (rw-------)
	SecureFilePermissions = 0o600
)

// Package manager defaults
const (
	// DefaultExecutable is the package manager invoked when none is configured
	DefaultExecutable = "winget"
	// DefaultNotFoundMarker is the search output that means no package matched
	DefaultNotFoundMarker = "No package found"
	// DefaultTermsMarker is the install output that triggers the single retry
	DefaultTermsMarker = "Terms of Service"
	// ErrorLinePrefix is prepended to streamed stderr lines
	ErrorLinePrefix = "Error: "
)

// DefaultInstallFlags are appended after "install <id>".
var DefaultInstallFlags = []string{"--silent", "--accept-source-agreements", "--accept-package-agreements"}

// Bridge defaults
const (
	// DefaultBridgeAddr is where the local message bridge listens
	DefaultBridgeAddr = "127.0.0.1:8765"
	// DefaultShutdownTimeout bounds graceful bridge shutdown
	DefaultShutdownTimeout = 5 * time.Second
)

// History constants
const (
	// DefaultHistoryLimit is the default number of batches to display
	DefaultHistoryLimit = 20
)

// Time formats
const (
	// TimestampFormat is the standard timestamp format
	TimestampFormat = time.RFC3339
)
