package analysis

// EventType discriminates the events a pipeline run emits.
type EventType string

const (
	// EventPhase announces a phase starting or a non-fatal status update.
	EventPhase EventType = "phase"
	// EventBriefing carries the materiality result, emitted as soon as
	// it is available.
	EventBriefing EventType = "briefing"
	// EventQuestions carries the predicted analyst questions.
	EventQuestions EventType = "questions"
	// EventTrends carries the period-over-period comparison.
	EventTrends EventType = "trends"
	// EventError terminates an aborted stream.
	EventError EventType = "error"
	// EventDone terminates a completed stream.
	EventDone EventType = "done"
)

// Event is one unit of pipeline progress. Events are transient: they
// are delivered to the run's sink and never persisted. Exactly one of
// EventDone or EventError closes every run.
type Event struct {
	Type EventType `json:"type"`

	// Message is set on phase and error events.
	Message string `json:"message,omitempty"`

	// Data carries the typed phase result on briefing, questions and
	// trends events.
	Data any `json:"data,omitempty"`

	// BriefingID accompanies the briefing event so clients can fetch
	// the persisted record later.
	BriefingID string `json:"briefing_id,omitempty"`

	// Metadata is set on the done event only.
	Metadata *RunMetadata `json:"metadata,omitempty"`
}

// RunMetadata summarizes a completed run.
type RunMetadata struct {
	DocumentsAnalyzed int    `json:"documents_analyzed"`
	TotalWords        int    `json:"total_words"`
	AnalyzedAt        string `json:"analyzed_at"`
	BriefingID        string `json:"briefing_id"`
}

// Sink receives pipeline events. Emit must not block the pipeline and
// must tolerate delivery failure silently - a disconnected client does
// not stop a run.
type Sink interface {
	Emit(event Event)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(event Event)

// Emit calls f(event).
func (f SinkFunc) Emit(event Event) { f(event) }

// discardSink swallows events for callers that run the pipeline
// without a listener.
type discardSink struct{}

func (discardSink) Emit(Event) {}
