package console

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/doeshing/installez/internal/application/install"
	"github.com/doeshing/installez/internal/domain"
	"github.com/doeshing/installez/internal/ports"
)

// StdioSource reads one JSON array of identifiers per input line. It is the
// message bus used when a host process embeds the web view and pipes its
// messages through installez.
type StdioSource struct {
	scanner *bufio.Scanner
}

// NewStdioSource wraps r.
func NewStdioSource(r io.Reader) *StdioSource {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &StdioSource{scanner: scanner}
}

// ReceiveBatch implements ports.BatchSource. Blank lines are skipped.
// Cancellation is observed between messages only.
func (s *StdioSource) ReceiveBatch(ctx context.Context) (domain.InstallRequest, error) {
	for {
		if err := ctx.Err(); err != nil {
			return domain.InstallRequest{}, err
		}
		if !s.scanner.Scan() {
			if err := s.scanner.Err(); err != nil {
				return domain.InstallRequest{}, fmt.Errorf("read request: %w", err)
			}
			return domain.InstallRequest{}, io.EOF
		}
		line := strings.TrimSpace(s.scanner.Text())
		if line == "" {
			continue
		}
		return install.DecodeRequest([]byte(line))
	}
}

// Message types written by StdioShell.
const (
	MessageLine    = "line"
	MessageSummary = "summary"
	MessageAlert   = "alert"
)

// Message is one framed outbound message. Text may span several lines; the
// frame itself always occupies exactly one output line.
type Message struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// StdioShell writes one JSON Message per line: streamed output and the
// summary to out, alerts to errw.
type StdioShell struct {
	mu   sync.Mutex
	out  *json.Encoder
	errw *json.Encoder
}

// NewStdioShell builds a StdioShell.
func NewStdioShell(out, errw io.Writer) *StdioShell {
	return &StdioShell{out: json.NewEncoder(out), errw: json.NewEncoder(errw)}
}

func (s *StdioShell) Emit(line string) {
	s.write(s.out, Message{Type: MessageLine, Text: line})
}

func (s *StdioShell) EmitSummary(summary string) {
	s.write(s.out, Message{Type: MessageSummary, Text: summary})
}

func (s *StdioShell) Alert(message string) {
	s.write(s.errw, Message{Type: MessageAlert, Text: message})
}

func (s *StdioShell) write(enc *json.Encoder, msg Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = enc.Encode(msg)
}

var (
	_ ports.BatchSource  = (*StdioSource)(nil)
	_ ports.SummaryShell = (*StdioShell)(nil)
)
