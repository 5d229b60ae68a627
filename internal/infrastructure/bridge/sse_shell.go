package bridge

import (
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/doeshing/installez/internal/ports"
)

// sseShell relays status lines to one HTTP response as Server-Sent Events.
type sseShell struct {
	mu sync.Mutex
	c  *gin.Context
}

func newSSEShell(c *gin.Context) *sseShell {
	return &sseShell{c: c}
}

func (s *sseShell) Emit(line string) {
	s.send(EventLine, line)
}

func (s *sseShell) EmitSummary(summary string) {
	s.send(EventSummary, summary)
}

func (s *sseShell) Alert(message string) {
	s.send(EventAlert, message)
}

func (s *sseShell) send(event, data string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.c.SSEvent(event, data)
	s.c.Writer.Flush()
}

var _ ports.SummaryShell = (*sseShell)(nil)
