package chatcmder_test

import (
	"bytes"
	"net"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/skillstream/api"
	chatcmder "github.com/papercomputeco/skillstream/cmd/skillstream/chat"
	"github.com/papercomputeco/skillstream/pkg/dotdir"
)

var _ = Describe("Chat Command", func() {
	var (
		tmpDir  string
		baseURL string
		out     *bytes.Buffer
	)

	newCmd := func(stdin string, args ...string) *cobra.Command {
		cmd := chatcmder.NewChatCmd()
		cmd.PersistentFlags().String("config-dir", "", "")
		cmd.PersistentFlags().Bool("debug", false, "")
		cmd.SetOut(out)
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetIn(strings.NewReader(stdin))
		cmd.SetArgs(append(args, "--config-dir", tmpDir, "--career-target", baseURL))
		return cmd
	}

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		out = &bytes.Buffer{}

		server, err := api.NewServer(api.Config{Reply: "You asked: {message}"})
		Expect(err).NotTo(HaveOccurred())

		ln, err := net.Listen("tcp", "127.0.0.1:0")
		Expect(err).NotTo(HaveOccurred())
		go func() { _ = server.RunWithListener(ln) }()
		DeferCleanup(server.Shutdown)

		baseURL = "http://" + ln.Addr().String()
	})

	It("has the expected flags", func() {
		cmd := chatcmder.NewChatCmd()
		Expect(cmd.Use).To(Equal("chat [message]"))
		for _, name := range []string{"career-target", "timeout", "render", "new", "chip"} {
			Expect(cmd.Flags().Lookup(name)).NotTo(BeNil(), name)
		}
	})

	It("streams a one-shot reply and remembers the conversation", func() {
		Expect(newCmd("", "hello", "there").Execute()).To(Succeed())
		Expect(out.String()).To(ContainSubstring("New conversation"))
		Expect(out.String()).To(ContainSubstring("You asked: hello there"))

		sessions, err := dotdir.NewManager().Sessions(tmpDir)
		Expect(err).NotTo(HaveOccurred())
		session, err := sessions.Load(chatcmder.SessionKey)
		Expect(err).NotTo(HaveOccurred())
		Expect(session).NotTo(BeNil())
		Expect(session.ConversationID).NotTo(BeEmpty())

		out.Reset()
		Expect(newCmd("", "again").Execute()).To(Succeed())
		Expect(out.String()).To(ContainSubstring("Resuming"))
	})

	It("starts over with --new", func() {
		Expect(newCmd("", "hello").Execute()).To(Succeed())
		out.Reset()

		Expect(newCmd("", "--new", "hello").Execute()).To(Succeed())
		Expect(out.String()).To(ContainSubstring("New conversation"))
		Expect(out.String()).NotTo(ContainSubstring("Resuming"))
	})

	It("returns the stream error of a failed turn", func() {
		err := newCmd("", "!error").Execute()
		Expect(err).To(MatchError(ContainSubstring("AI service error")))
	})

	It("runs an interactive session from stdin", func() {
		Expect(newCmd("first\n\n/new\nsecond\n/exit\nignored\n").Execute()).To(Succeed())
		Expect(out.String()).To(ContainSubstring("You asked: first"))
		Expect(out.String()).To(ContainSubstring("You asked: second"))
		Expect(out.String()).NotTo(ContainSubstring("You asked: ignored"))
	})
})
