package sse

import (
	"bytes"
	"io"
	"strings"
	"testing/iotest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// readAll drains r and returns every framed event.
func readAll(r *Reader) []Event {
	var events []Event
	for {
		ev, err := r.Next()
		Expect(err).NotTo(HaveOccurred())
		if ev == nil {
			return events
		}
		events = append(events, *ev)
	}
}

// splitReader delivers src in two reads, split at offset.
func splitReader(src string, offset int) io.Reader {
	return io.MultiReader(strings.NewReader(src[:offset]), strings.NewReader(src[offset:]))
}

var _ = Describe("Reader", func() {
	Describe("Next", func() {
		Context("with typed events", func() {
			It("pairs an event label with the following data line", func() {
				r := NewReader(strings.NewReader("event: token\ndata: {\"content\":\"Hel\"}\n\n"))

				ev, err := r.Next()
				Expect(err).NotTo(HaveOccurred())
				Expect(ev.Type).To(Equal("token"))
				Expect(ev.Data).To(Equal(`{"content":"Hel"}`))

				ev, err = r.Next()
				Expect(err).NotTo(HaveOccurred())
				Expect(ev).To(BeNil())
			})

			It("parses a full career chat stream", func() {
				input := "event: token\ndata: {\"content\":\"Hel\"}\n\n" +
					"event: token\ndata: {\"content\":\"lo\"}\n\n" +
					"event: done\ndata: {\"conversationId\":\"c1\"}\n\n"

				events := readAll(NewReader(strings.NewReader(input)))
				Expect(events).To(Equal([]Event{
					{Type: "token", Data: `{"content":"Hel"}`},
					{Type: "token", Data: `{"content":"lo"}`},
					{Type: "done", Data: `{"conversationId":"c1"}`},
				}))
			})

			It("consumes the label with the first data line only", func() {
				input := "event: token\ndata: {\"content\":\"a\"}\ndata: {\"content\":\"b\"}\n"

				events := readAll(NewReader(strings.NewReader(input)))
				Expect(events).To(HaveLen(2))
				Expect(events[0].Type).To(Equal("token"))
				Expect(events[1].Type).To(BeEmpty())
			})

			It("replaces a pending label with a newer one", func() {
				input := "event: token\nevent: error\ndata: {\"error\":\"boom\"}\n"

				events := readAll(NewReader(strings.NewReader(input)))
				Expect(events).To(Equal([]Event{{Type: "error", Data: `{"error":"boom"}`}}))
			})

			It("keeps the pending label across blank lines and ignored fields", func() {
				input := "event: done\n\nid: 7\nretry: 3000\ndata: {\"messageId\":\"m1\"}\n"

				events := readAll(NewReader(strings.NewReader(input)))
				Expect(events).To(Equal([]Event{{Type: "done", Data: `{"messageId":"m1"}`}}))
			})

			It("reports the pending label", func() {
				r := NewReader(strings.NewReader("event: token\n"))
				ev, err := r.Next()
				Expect(err).NotTo(HaveOccurred())
				Expect(ev).To(BeNil())
				Expect(r.PendingType()).To(Equal("token"))
			})
		})

		Context("with bare data lines", func() {
			It("yields one event per data line", func() {
				input := "data: {\"content\":\"Hi\"}\ndata: {\"error\":\"boom\"}\n"

				events := readAll(NewReader(strings.NewReader(input)))
				Expect(events).To(Equal([]Event{
					{Data: `{"content":"Hi"}`},
					{Data: `{"error":"boom"}`},
				}))
			})

			It("handles data field with no space after colon", func() {
				events := readAll(NewReader(strings.NewReader("data:no-space\n")))
				Expect(events).To(Equal([]Event{{Data: "no-space"}}))
			})

			It("handles empty data field", func() {
				events := readAll(NewReader(strings.NewReader("data:\n")))
				Expect(events).To(Equal([]Event{{Data: ""}}))
			})

			It("treats a bare 'data' line as an empty data field", func() {
				events := readAll(NewReader(strings.NewReader("data\n")))
				Expect(events).To(Equal([]Event{{Data: ""}}))
			})
		})

		Context("with line terminators", func() {
			It("strips carriage returns from CRLF lines", func() {
				input := "event: token\r\ndata: {\"content\":\"x\"}\r\n\r\n"

				events := readAll(NewReader(strings.NewReader(input)))
				Expect(events).To(Equal([]Event{{Type: "token", Data: `{"content":"x"}`}}))
			})

			It("drops a final fragment with no newline", func() {
				input := "data: {\"content\":\"kept\"}\ndata: {\"content\":\"cut"

				events := readAll(NewReader(strings.NewReader(input)))
				Expect(events).To(Equal([]Event{{Data: `{"content":"kept"}`}}))
			})
		})

		Context("with SSE comments", func() {
			It("ignores comment lines", func() {
				events := readAll(NewReader(strings.NewReader(": keep-alive\ndata: hello\n")))
				Expect(events).To(Equal([]Event{{Data: "hello"}}))
			})
		})

		Context("with arbitrary chunk boundaries", func() {
			input := "event: token\r\ndata: {\"content\":\"héllo wörld ✓\"}\r\n\r\n" +
				": ping\n" +
				"data: {\"content\":\"日本語\"}\n\n" +
				"event: done\ndata: {\"conversationId\":\"c1\"}\n\n"

			It("produces the same events for every split offset", func() {
				expected := readAll(NewReader(strings.NewReader(input)))
				Expect(expected).To(HaveLen(3))

				for offset := 1; offset < len(input); offset++ {
					got := readAll(NewReader(splitReader(input, offset)))
					Expect(got).To(Equal(expected), "split at byte %d", offset)
				}
			})

			It("produces the same events when read one byte at a time", func() {
				expected := readAll(NewReader(strings.NewReader(input)))
				got := readAll(NewReader(iotest.OneByteReader(strings.NewReader(input))))
				Expect(got).To(Equal(expected))
			})
		})

		Context("with a tee writer", func() {
			It("copies every consumed line verbatim", func() {
				input := ": comment\nevent: token\ndata: {\"content\":\"Hi\"}\n\n"
				dst := &bytes.Buffer{}

				events := readAll(NewReader(strings.NewReader(input), WithTee(dst)))
				Expect(events).To(HaveLen(1))
				Expect(dst.String()).To(Equal(input))
			})

			It("preserves carriage returns in the tee", func() {
				input := "data: x\r\n"
				dst := &bytes.Buffer{}

				readAll(NewReader(strings.NewReader(input), WithTee(dst)))
				Expect(dst.String()).To(Equal(input))
			})
		})

		Context("edge cases", func() {
			It("returns nil on empty input", func() {
				ev, err := NewReader(strings.NewReader("")).Next()
				Expect(err).NotTo(HaveOccurred())
				Expect(ev).To(BeNil())
			})

			It("returns nil on input with only blank lines", func() {
				ev, err := NewReader(strings.NewReader("\n\n\n")).Next()
				Expect(err).NotTo(HaveOccurred())
				Expect(ev).To(BeNil())
			})

			It("returns the source error", func() {
				r := NewReader(iotest.ErrReader(io.ErrUnexpectedEOF))
				ev, err := r.Next()
				Expect(err).To(MatchError(io.ErrUnexpectedEOF))
				Expect(ev).To(BeNil())
			})

			It("fails on lines longer than the maximum", func() {
				input := "data: " + strings.Repeat("x", maxLineSize+1) + "\n"
				ev, err := NewReader(strings.NewReader(input)).Next()
				Expect(err).To(HaveOccurred())
				Expect(ev).To(BeNil())
			})
		})
	})
})
