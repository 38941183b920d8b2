package eventstream_test

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/skillstream/pkg/eventstream"
)

var _ = Describe("Event", func() {
	It("marshals TurnCompletedEvent with expected top-level keys", func() {
		now := time.Unix(1735689600, 0).UTC()
		event := eventstream.NewTurnCompletedEvent(
			eventstream.EventSource{Service: "tutor", WorkerURL: "http://localhost:8787", CourseID: "c1"},
			eventstream.TurnRequestMeta{
				Path:        "/ai-tutor-chat",
				StartedAt:   now.Add(-1500 * time.Millisecond),
				CompletedAt: now,
				HTTPStatus:  200,
				TokenCount:  12,
			},
			eventstream.Turn{
				ConversationID: "tc-1",
				MessageID:      "3",
				Prompt:         "What is a variable?",
				Response:       "A named value.",
			},
		)

		payload, err := json.Marshal(event)
		Expect(err).NotTo(HaveOccurred())

		var got map[string]any
		Expect(json.Unmarshal(payload, &got)).To(Succeed())

		Expect(got).To(HaveKeyWithValue("schema_version", BeNumerically("==", eventstream.SchemaVersionV1)))
		Expect(got).To(HaveKeyWithValue("event_type", eventstream.EventTypeTurnCompleted))
		Expect(got).To(HaveKey("event_id"))
		Expect(got).To(HaveKey("emitted_at"))
		Expect(got).To(HaveKey("source"))
		Expect(got).To(HaveKey("request_meta"))
		Expect(got).To(HaveKey("turn"))

		meta := got["request_meta"].(map[string]any)
		Expect(meta).To(HaveKeyWithValue("duration_ms", BeNumerically("==", 1500)))

		turn := got["turn"].(map[string]any)
		Expect(turn).To(HaveKeyWithValue("conversation_id", "tc-1"))
		Expect(turn).NotTo(HaveKey("error"))
	})

	It("assigns a unique uuid to each event", func() {
		a := eventstream.NewTurnCompletedEvent(eventstream.EventSource{}, eventstream.TurnRequestMeta{}, eventstream.Turn{})
		b := eventstream.NewTurnCompletedEvent(eventstream.EventSource{}, eventstream.TurnRequestMeta{}, eventstream.Turn{})

		_, err := uuid.Parse(a.EventID)
		Expect(err).NotTo(HaveOccurred())
		Expect(a.EventID).NotTo(Equal(b.EventID))
	})

	It("defines stable event constants", func() {
		Expect(eventstream.EventTypeTurnCompleted).To(Equal("skillstream.turn.completed"))
		Expect(eventstream.ErrNilTurnEvent).To(MatchError("nil turn event"))
	})
})
