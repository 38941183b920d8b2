package dotdir_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/skillstream/pkg/dotdir"
)

var _ = Describe("Sessions", func() {
	var (
		tmpDir   string
		sessions *dotdir.Sessions
	)

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()

		var err error
		sessions, err = dotdir.NewManager().Sessions(tmpDir)
		Expect(err).NotTo(HaveOccurred())
	})

	It("returns nil when nothing was saved", func() {
		s, err := sessions.Load("career")
		Expect(err).NotTo(HaveOccurred())
		Expect(s).To(BeNil())
	})

	It("saves and loads a conversation id per key", func() {
		Expect(sessions.Save("career", "conv-1")).To(Succeed())
		Expect(sessions.Save("tutor:course-9", "tc-7")).To(Succeed())

		s, err := sessions.Load("career")
		Expect(err).NotTo(HaveOccurred())
		Expect(s.ConversationID).To(Equal("conv-1"))
		Expect(s.UpdatedAt).NotTo(BeZero())

		s, err = sessions.Load("tutor:course-9")
		Expect(err).NotTo(HaveOccurred())
		Expect(s.ConversationID).To(Equal("tc-7"))
	})

	It("overwrites an existing key", func() {
		Expect(sessions.Save("career", "conv-1")).To(Succeed())
		Expect(sessions.Save("career", "conv-2")).To(Succeed())

		s, err := sessions.Load("career")
		Expect(err).NotTo(HaveOccurred())
		Expect(s.ConversationID).To(Equal("conv-2"))
	})

	It("writes the file with owner-only permissions", func() {
		Expect(sessions.Save("career", "conv-1")).To(Succeed())
		info, err := os.Stat(sessions.Path())
		Expect(err).NotTo(HaveOccurred())
		Expect(info.Mode().Perm()).To(Equal(os.FileMode(0o600)))
	})

	It("clears one key and removes the file when empty", func() {
		Expect(sessions.Save("career", "conv-1")).To(Succeed())
		Expect(sessions.Save("tutor:c", "tc-1")).To(Succeed())

		Expect(sessions.Clear("career")).To(Succeed())
		s, err := sessions.Load("career")
		Expect(err).NotTo(HaveOccurred())
		Expect(s).To(BeNil())

		Expect(sessions.Clear("tutor:c")).To(Succeed())
		Expect(filepath.Join(tmpDir, "sessions.json")).NotTo(BeAnExistingFile())
	})

	It("treats clearing a missing key as a no-op", func() {
		Expect(sessions.Clear("nope")).To(Succeed())
	})

	It("refuses an empty conversation id", func() {
		Expect(sessions.Save("career", "")).To(HaveOccurred())
	})

	It("reports a corrupt file", func() {
		Expect(os.WriteFile(sessions.Path(), []byte("{nope"), 0o600)).To(Succeed())
		_, err := sessions.Load("career")
		Expect(err).To(MatchError(ContainSubstring("parsing sessions")))
	})
})
