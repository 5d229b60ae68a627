package domain

// Stream identifies which pipe an output line came from.
type Stream string

const (
	StreamStdout Stream = "stdout"
	StreamStderr Stream = "stderr"
)

// OutputLine is a single line read from a running subprocess.
type OutputLine struct {
	Stream Stream
	Text   string
}

// StatusText is the line as relayed to the UI shell.
func (l OutputLine) StatusText() string {
	if l.Stream == StreamStderr {
		return ErrorLinePrefix + l.Text
	}
	return l.Text
}

// ProcessResult is what a finished, non-streamed invocation produced.
type ProcessResult struct {
	Output   string
	ExitCode int
}

// InstallAttempt is what a finished, streamed install invocation produced.
type InstallAttempt struct {
	Lines    []OutputLine
	ExitCode int
}

// Succeeded reports a zero exit code.
func (a InstallAttempt) Succeeded() bool {
	return a.ExitCode == 0
}
