package skillstreamcmder_test

import (
	"bytes"
	"net"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/skillstream/api"
	skillstreamcmder "github.com/papercomputeco/skillstream/cmd/skillstream"
	"github.com/papercomputeco/skillstream/pkg/telemetry"
)

var _ = Describe("NewSkillstreamCmd", func() {
	It("registers every subcommand", func() {
		cmd := skillstreamcmder.NewSkillstreamCmd()
		names := []string{}
		for _, sub := range cmd.Commands() {
			names = append(names, sub.Name())
		}
		Expect(names).To(ContainElements("chat", "tutor", "auth", "config", "serve", "health", "version"))
	})

	It("has the global flags", func() {
		cmd := skillstreamcmder.NewSkillstreamCmd()
		Expect(cmd.PersistentFlags().Lookup("debug")).NotTo(BeNil())
		Expect(cmd.PersistentFlags().ShorthandLookup("d")).NotTo(BeNil())
		Expect(cmd.PersistentFlags().Lookup("config-dir")).NotTo(BeNil())
	})

	It("passes --config-dir through to subcommands", func() {
		tmpDir := GinkgoT().TempDir()
		out := &bytes.Buffer{}

		cmd := skillstreamcmder.NewSkillstreamCmd()
		cmd.SetOut(out)
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{"--config-dir", tmpDir, "config", "set", "events.topic", "turns"})
		Expect(cmd.Execute()).To(Succeed())

		out.Reset()
		cmd = skillstreamcmder.NewSkillstreamCmd()
		cmd.SetOut(out)
		cmd.SetArgs([]string{"--config-dir", tmpDir, "config", "get", "events.topic"})
		Expect(cmd.Execute()).To(Succeed())
		Expect(out.String()).To(ContainSubstring("turns"))
	})

	Describe("telemetry", func() {
		var (
			tmpDir string
			errOut *bytes.Buffer
		)

		writeConfig := func(data string) {
			Expect(os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(data), 0o600)).To(Succeed())
		}

		run := func(args ...string) error {
			cmd := skillstreamcmder.NewSkillstreamCmd()
			cmd.SetOut(&bytes.Buffer{})
			cmd.SetErr(errOut)
			cmd.SetArgs(append([]string{"--config-dir", tmpDir}, args...))
			return cmd.Execute()
		}

		BeforeEach(func() {
			tmpDir = GinkgoT().TempDir()
			errOut = &bytes.Buffer{}
		})

		It("exports worker request spans with the stdout exporter", func() {
			server, err := api.NewServer(api.Config{})
			Expect(err).NotTo(HaveOccurred())
			ln, err := net.Listen("tcp", "127.0.0.1:0")
			Expect(err).NotTo(HaveOccurred())
			go func() { _ = server.RunWithListener(ln) }()
			DeferCleanup(server.Shutdown)
			baseURL := "http://" + ln.Addr().String()

			writeConfig("[telemetry]\nexporter = \"stdout\"\n")

			Expect(run("health", "--career-target", baseURL, "--course-target", baseURL)).To(Succeed())
			Expect(errOut.String()).To(ContainSubstring("GET /health"))
		})

		It("fails on an unknown exporter", func() {
			writeConfig("[telemetry]\nexporter = \"jaeger\"\n")

			Expect(run("version")).To(MatchError(telemetry.ErrUnknownExporter))
		})
	})
})
