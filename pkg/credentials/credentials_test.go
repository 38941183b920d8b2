package credentials_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/skillstream/pkg/credentials"
)

var _ = Describe("Manager", func() {
	var (
		tmpDir string
		mgr    *credentials.Manager
	)

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "credentials-test-*")
		Expect(err).NotTo(HaveOccurred())

		mgr, err = credentials.NewManager(tmpDir)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	Describe("NewManager", func() {
		It("targets credentials.toml in the override directory", func() {
			Expect(mgr.GetTarget()).To(Equal(filepath.Join(tmpDir, "credentials.toml")))
		})
	})

	Describe("Load", func() {
		It("returns empty credentials when no file exists", func() {
			creds, err := mgr.Load()
			Expect(err).NotTo(HaveOccurred())
			Expect(creds.Services).To(BeEmpty())
		})

		It("returns an error for malformed TOML", func() {
			Expect(os.WriteFile(mgr.GetTarget(), []byte("not = [valid"), 0o600)).To(Succeed())

			_, err := mgr.Load()
			Expect(err).To(MatchError(ContainSubstring("parsing credentials")))
		})
	})

	Describe("SetToken", func() {
		It("stores a token and writes the file with 0600 permissions", func() {
			Expect(mgr.SetToken(credentials.ServiceCareer, "  tok-123  ")).To(Succeed())

			token, err := mgr.GetToken(credentials.ServiceCareer)
			Expect(err).NotTo(HaveOccurred())
			Expect(token).To(Equal("tok-123"))

			info, err := os.Stat(mgr.GetTarget())
			Expect(err).NotTo(HaveOccurred())
			Expect(info.Mode().Perm()).To(Equal(os.FileMode(0o600)))
		})

		It("keeps tokens for other services", func() {
			Expect(mgr.SetToken(credentials.ServiceCareer, "career-tok")).To(Succeed())
			Expect(mgr.SetToken(credentials.ServiceCourse, "course-tok")).To(Succeed())

			services, err := mgr.ListServices()
			Expect(err).NotTo(HaveOccurred())
			Expect(services).To(Equal([]string{"career", "course"}))
		})

		It("rejects unknown services", func() {
			err := mgr.SetToken("billing", "tok")
			Expect(err).To(MatchError(credentials.ErrUnknownService))
		})

		It("rejects empty tokens", func() {
			Expect(mgr.SetToken(credentials.ServiceCourse, "   ")).NotTo(Succeed())
		})
	})

	Describe("GetToken", func() {
		It("returns an empty string when nothing is stored", func() {
			token, err := mgr.GetToken(credentials.ServiceCourse)
			Expect(err).NotTo(HaveOccurred())
			Expect(token).To(BeEmpty())
		})
	})

	Describe("Token", func() {
		It("prefers the environment override", func() {
			Expect(mgr.SetToken(credentials.ServiceCareer, "stored")).To(Succeed())
			GinkgoT().Setenv("SKILLSTREAM_CAREER_TOKEN", "from-env")

			token, err := mgr.Token(credentials.ServiceCareer)
			Expect(err).NotTo(HaveOccurred())
			Expect(token).To(Equal("from-env"))
		})

		It("falls back to the stored token", func() {
			Expect(mgr.SetToken(credentials.ServiceCourse, "stored")).To(Succeed())
			GinkgoT().Setenv("SKILLSTREAM_COURSE_TOKEN", "")

			token, err := mgr.Token(credentials.ServiceCourse)
			Expect(err).NotTo(HaveOccurred())
			Expect(token).To(Equal("stored"))
		})
	})

	Describe("RemoveToken", func() {
		It("removes a stored token", func() {
			Expect(mgr.SetToken(credentials.ServiceCareer, "tok")).To(Succeed())
			Expect(mgr.RemoveToken(credentials.ServiceCareer)).To(Succeed())

			token, err := mgr.GetToken(credentials.ServiceCareer)
			Expect(err).NotTo(HaveOccurred())
			Expect(token).To(BeEmpty())
		})
	})
})

var _ = Describe("helpers", func() {
	It("maps services to environment variables", func() {
		Expect(credentials.EnvVarForService("career")).To(Equal("SKILLSTREAM_CAREER_TOKEN"))
		Expect(credentials.EnvVarForService("course")).To(Equal("SKILLSTREAM_COURSE_TOKEN"))
		Expect(credentials.EnvVarForService("other")).To(BeEmpty())
	})

	It("reports supported services", func() {
		Expect(credentials.IsSupportedService("career")).To(BeTrue())
		Expect(credentials.IsSupportedService("openai")).To(BeFalse())
	})

	It("masks tokens", func() {
		Expect(credentials.Mask("abc")).To(Equal("***"))
		Expect(credentials.Mask("secret-token-1234")).To(Equal("********1234"))
	})
})
