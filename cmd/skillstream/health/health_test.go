package healthcmder_test

import (
	"bytes"
	"net"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/skillstream/api"
	healthcmder "github.com/papercomputeco/skillstream/cmd/skillstream/health"
)

var _ = Describe("Health Command", func() {
	var (
		tmpDir string
		out    *bytes.Buffer
	)

	newCmd := func(args ...string) *cobra.Command {
		cmd := healthcmder.NewHealthCmd()
		cmd.PersistentFlags().String("config-dir", "", "")
		cmd.PersistentFlags().Bool("debug", false, "")
		cmd.SetOut(out)
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs(append(args, "--config-dir", tmpDir))
		return cmd
	}

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		out = &bytes.Buffer{}
	})

	Context("with a running worker", func() {
		var baseURL string

		BeforeEach(func() {
			server, err := api.NewServer(api.Config{})
			Expect(err).NotTo(HaveOccurred())

			ln, err := net.Listen("tcp", "127.0.0.1:0")
			Expect(err).NotTo(HaveOccurred())
			go func() { _ = server.RunWithListener(ln) }()
			DeferCleanup(server.Shutdown)

			baseURL = "http://" + ln.Addr().String()
		})

		It("reports both workers healthy", func() {
			err := newCmd("--career-target", baseURL, "--course-target", baseURL).Execute()
			Expect(err).NotTo(HaveOccurred())
			Expect(out.String()).To(ContainSubstring("career"))
			Expect(out.String()).To(ContainSubstring("course"))
		})
	})

	Context("with an unreachable worker", func() {
		It("fails with ErrUnhealthy", func() {
			ln, err := net.Listen("tcp", "127.0.0.1:0")
			Expect(err).NotTo(HaveOccurred())
			dead := "http://" + ln.Addr().String()
			Expect(ln.Close()).To(Succeed())

			err = newCmd("--career-target", dead, "--course-target", dead, "--timeout", "2s").Execute()
			Expect(err).To(MatchError(healthcmder.ErrUnhealthy))
		})
	})
})
