package tutorcmder_test

import (
	"bytes"
	"net"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/skillstream/api"
	tutorcmder "github.com/papercomputeco/skillstream/cmd/skillstream/tutor"
	"github.com/papercomputeco/skillstream/pkg/client/tutor"
	"github.com/papercomputeco/skillstream/pkg/dotdir"
)

var _ = Describe("ParseRating", func() {
	DescribeTable("accepted ratings",
		func(in string, want int) {
			got, err := tutorcmder.ParseRating(in)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(want))
		},
		Entry("up", "up", 1),
		Entry("UP with spaces", " UP ", 1),
		Entry("+1", "+1", 1),
		Entry("1", "1", 1),
		Entry("down", "down", -1),
		Entry("-1", "-1", -1),
	)

	DescribeTable("rejected ratings",
		func(in string) {
			_, err := tutorcmder.ParseRating(in)
			Expect(err).To(MatchError(tutor.ErrInvalidRating))
		},
		Entry("empty", ""),
		Entry("zero", "0"),
		Entry("two", "2"),
		Entry("word", "meh"),
	)
})

var _ = Describe("Tutor Command", func() {
	var (
		tmpDir  string
		baseURL string
		out     *bytes.Buffer
	)

	run := func(stdin string, args ...string) error {
		cmd := tutorcmder.NewTutorCmd()
		cmd.PersistentFlags().String("config-dir", "", "")
		cmd.PersistentFlags().Bool("debug", false, "")
		cmd.SetOut(out)
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetIn(strings.NewReader(stdin))
		cmd.SetArgs(append(args, "--config-dir", tmpDir, "--course-target", baseURL))
		return cmd.Execute()
	}

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		out = &bytes.Buffer{}

		server, err := api.NewServer(api.Config{
			Dialect: api.DialectInferred,
			Reply:   "Tutor says: {message}",
		})
		Expect(err).NotTo(HaveOccurred())

		ln, err := net.Listen("tcp", "127.0.0.1:0")
		Expect(err).NotTo(HaveOccurred())
		go func() { _ = server.RunWithListener(ln) }()
		DeferCleanup(server.Shutdown)

		baseURL = "http://" + ln.Addr().String()
	})

	It("has chat, suggest, feedback and progress subcommands", func() {
		cmd := tutorcmder.NewTutorCmd()
		names := []string{}
		for _, sub := range cmd.Commands() {
			names = append(names, sub.Name())
		}
		Expect(names).To(ConsistOf("chat", "suggest", "feedback", "progress"))
	})

	Describe("chat", func() {
		It("requires --course", func() {
			Expect(run("", "chat", "hi")).To(MatchError(ContainSubstring("--course is required")))
		})

		It("streams a reply and remembers the conversation per course", func() {
			Expect(run("", "chat", "--course", "bio-101", "--lesson", "cells-2", "what", "is", "osmosis")).To(Succeed())
			Expect(out.String()).To(ContainSubstring("Tutor says: what is osmosis"))

			sessions, err := dotdir.NewManager().Sessions(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			session, err := sessions.Load(tutorcmder.SessionKey("bio-101"))
			Expect(err).NotTo(HaveOccurred())
			Expect(session).NotTo(BeNil())

			other, err := sessions.Load(tutorcmder.SessionKey("chem-200"))
			Expect(err).NotTo(HaveOccurred())
			Expect(other).To(BeNil())
		})
	})

	Describe("suggest", func() {
		It("lists the starter questions", func() {
			Expect(run("", "suggest", "cells-2")).To(Succeed())
			Expect(out.String()).To(ContainSubstring("Lesson cells-2"))
			Expect(out.String()).To(ContainSubstring("1."))
			Expect(out.String()).To(ContainSubstring("3."))
		})
	})

	Describe("feedback", func() {
		It("rates a reply of the course's last conversation", func() {
			Expect(run("", "chat", "--course", "bio-101", "hello")).To(Succeed())
			out.Reset()

			Expect(run("", "feedback", "--course", "bio-101", "--index", "1", "--rating", "up")).To(Succeed())
			Expect(out.String()).NotTo(BeEmpty())
		})

		It("rejects an invalid rating before calling the worker", func() {
			err := run("", "feedback", "--conversation", "c1", "--rating", "sideways")
			Expect(err).To(MatchError(tutor.ErrInvalidRating))
		})

		It("fails for an unknown conversation", func() {
			Expect(run("", "feedback", "--conversation", "nope", "--rating", "down")).NotTo(Succeed())
		})
	})

	Describe("progress", func() {
		It("records and shows lesson progress", func() {
			Expect(run("", "progress", "--course", "bio-101", "--lesson", "cells-1", "--status", tutor.StatusCompleted)).To(Succeed())
			Expect(run("", "progress", "--course", "bio-101", "--lesson", "cells-2", "--status", tutor.StatusInProgress)).To(Succeed())
			out.Reset()

			Expect(run("", "progress", "--course", "bio-101")).To(Succeed())
			Expect(out.String()).To(ContainSubstring("1/2 lessons, 50%"))
			Expect(out.String()).To(ContainSubstring("cells-1"))
			Expect(out.String()).To(ContainSubstring("cells-2"))
		})

		It("requires --lesson and --status together", func() {
			err := run("", "progress", "--course", "bio-101", "--lesson", "cells-1")
			Expect(err).To(MatchError(ContainSubstring("must be set together")))
		})

		It("rejects an unknown status", func() {
			err := run("", "progress", "--course", "bio-101", "--lesson", "cells-1", "--status", "done")
			Expect(err).To(MatchError(tutor.ErrInvalidStatus))
		})
	})
})
