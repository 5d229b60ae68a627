package domain

import "time"

// Config mirrors ~/.installez/config.yaml.
type Config struct {
	ConfigFormatVersion string                 `yaml:"config_format_version"`
	PackageManager      PackageManagerSettings `yaml:"package_manager"`
	Executor            ExecutorSettings       `yaml:"executor"`
	Bridge              BridgeSettings         `yaml:"bridge"`
	History             HistorySettings        `yaml:"history"`
	Log                 LogSettings            `yaml:"log"`
}

// PackageManagerSettings describes the CLI being driven and how its output is read.
type PackageManagerSettings struct {
	Executable     string   `yaml:"executable"`
	InstallFlags   []string `yaml:"install_flags"`
	NotFoundMarker string   `yaml:"not_found_marker"`
	TermsMarker    string   `yaml:"terms_marker"`
}

// ExecutorSettings bounds subprocess invocations. Zero timeout means none.
type ExecutorSettings struct {
	Timeout time.Duration `yaml:"timeout"`
}

// BridgeSettings configures the local UI message bridge.
type BridgeSettings struct {
	Addr            string `yaml:"addr"`
	ReportMalformed bool   `yaml:"report_malformed"`
}

// HistorySettings controls batch persistence. Disabled unless opted in.
type HistorySettings struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// LogSettings configures the logger.
type LogSettings struct {
	Level string `yaml:"level"`
}
