package cliui_test

import (
	"bytes"
	"errors"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/skillstream/pkg/cliui"
)

var _ = Describe("cliui", func() {
	DescribeTable("FormatDuration",
		func(d time.Duration, expected string) {
			Expect(cliui.FormatDuration(d)).To(Equal(expected))
		},
		Entry("milliseconds", 12*time.Millisecond, "12ms"),
		Entry("zero", time.Duration(0), "0ms"),
		Entry("seconds", 3200*time.Millisecond, "3.2s"),
	)

	Describe("Mark", func() {
		It("returns the success mark for nil", func() {
			Expect(cliui.Mark(nil)).To(Equal(cliui.SuccessMark))
		})

		It("returns the fail mark for an error", func() {
			Expect(cliui.Mark(errors.New("x"))).To(Equal(cliui.FailMark))
		})
	})

	Describe("Step", func() {
		It("prints the message and returns the function error", func() {
			buf := &bytes.Buffer{}
			boom := errors.New("boom")

			err := cliui.Step(buf, "checking career", func() error { return boom })
			Expect(err).To(MatchError(boom))
			Expect(buf.String()).To(ContainSubstring("checking career"))
			Expect(strings.HasSuffix(buf.String(), "\n")).To(BeTrue())
		})
	})

	Describe("terminal helpers", func() {
		It("treats buffers as non-terminals", func() {
			buf := &bytes.Buffer{}
			Expect(cliui.IsTerminal(buf)).To(BeFalse())
			Expect(cliui.WordWrap(buf)).To(Equal(cliui.DefaultWordWrap))
		})

		It("reads a secret from a plain reader", func() {
			out := &bytes.Buffer{}
			secret, err := cliui.ReadSecret(strings.NewReader("tok-1\n"), out, "Token: ")
			Expect(err).NotTo(HaveOccurred())
			Expect(secret).To(Equal("tok-1"))
			Expect(out.String()).To(Equal("Token: "))
		})
	})

	Describe("RenderMarkdown", func() {
		It("renders markdown text", func() {
			out, err := cliui.RenderMarkdown("# Title\n\nSome **bold** text.", 0, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("Title"))
			Expect(out).To(ContainSubstring("bold"))
		})

		It("applies a named style", func() {
			styled, err := cliui.RenderMarkdown("Some **bold** text.", 0, "dark")
			Expect(err).NotTo(HaveOccurred())
			Expect(styled).To(ContainSubstring("\x1b["))
			Expect(styled).NotTo(ContainSubstring("**bold**"))

			plain, err := cliui.RenderMarkdown("Some **bold** text.", 0, "notty")
			Expect(err).NotTo(HaveOccurred())
			Expect(plain).To(ContainSubstring("**bold**"))
		})
	})

	It("renders a service prompt", func() {
		Expect(cliui.Prompt("career")).To(ContainSubstring("career>"))
	})
})
