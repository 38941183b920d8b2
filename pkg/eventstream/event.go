package eventstream

import (
	"time"

	"github.com/google/uuid"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeTurnCompleted is emitted after a chat turn finished streaming,
	// successfully or not.
	EventTypeTurnCompleted = "skillstream.turn.completed"
)

// TurnCompletedEvent is a transport-neutral event payload for one chat turn.
// It carries the turn text only; nothing is persisted locally.
type TurnCompletedEvent struct {
	SchemaVersion int             `json:"schema_version"`
	EventType     string          `json:"event_type"`
	EventID       string          `json:"event_id"`
	EmittedAt     time.Time       `json:"emitted_at"`
	Source        EventSource     `json:"source"`
	RequestMeta   TurnRequestMeta `json:"request_meta"`
	Turn          Turn            `json:"turn"`
}

// EventSource identifies which worker served the turn.
type EventSource struct {
	// Service is "career" or "tutor".
	Service   string `json:"service"`
	WorkerURL string `json:"worker_url,omitempty"`
	CourseID  string `json:"course_id,omitempty"`
	LessonID  string `json:"lesson_id,omitempty"`
}

// TurnRequestMeta captures request lifecycle metadata for the event.
type TurnRequestMeta struct {
	Path        string    `json:"path,omitempty"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
	DurationMs  int64     `json:"duration_ms"`
	HTTPStatus  int       `json:"http_status,omitempty"`
	TokenCount  int       `json:"token_count"`
}

// Turn is the exchanged text and the identifiers the worker assigned.
type Turn struct {
	ConversationID string `json:"conversation_id,omitempty"`
	MessageID      string `json:"message_id,omitempty"`
	Intent         string `json:"intent,omitempty"`
	Blocked        bool   `json:"blocked,omitempty"`
	Prompt         string `json:"prompt"`
	Response       string `json:"response"`
	Error          string `json:"error,omitempty"`
}

// NewTurnCompletedEvent returns an event with its envelope fields set. The
// duration is derived from meta's start and completion times.
func NewTurnCompletedEvent(source EventSource, meta TurnRequestMeta, turn Turn) *TurnCompletedEvent {
	if !meta.CompletedAt.IsZero() && !meta.StartedAt.IsZero() {
		meta.DurationMs = meta.CompletedAt.Sub(meta.StartedAt).Milliseconds()
	}

	return &TurnCompletedEvent{
		SchemaVersion: SchemaVersionV1,
		EventType:     EventTypeTurnCompleted,
		EventID:       uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		Source:        source,
		RequestMeta:   meta,
		Turn:          turn,
	}
}
