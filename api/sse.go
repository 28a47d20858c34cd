package api

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/poiesic/warroom/analysis"
)

// SSESink delivers pipeline events to an HTTP response as server-sent
// events, one `data:` frame per event. Delivery is best-effort: the
// first write failure marks the client gone and later events are
// dropped without disturbing the run.
type SSESink struct {
	mu      sync.Mutex
	w       io.Writer
	flusher http.Flusher
	gone    bool
	logger  *slog.Logger
}

// NewSSESink wraps a response writer as an analysis.Sink.
func NewSSESink(w io.Writer, flusher http.Flusher) *SSESink {
	return &SSESink{
		w:       w,
		flusher: flusher,
		logger:  slog.Default().With("component", "api"),
	}
}

// Emit writes one event frame and flushes it to the client.
func (s *SSESink) Emit(event analysis.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gone {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("encoding event failed", "type", event.Type, "err", err)
		return
	}

	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", payload); err != nil {
		s.gone = true
		s.logger.Debug("client disconnected, dropping remaining events", "err", err)
		return
	}
	if s.flusher != nil {
		s.flusher.Flush()
	}
}
