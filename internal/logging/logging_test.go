package logging

import (
	"bytes"
	"log/slog"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Logging", func() {
	var previous *slog.Logger

	BeforeEach(func() {
		previous = slog.Default()
		DeferCleanup(func() {
			slog.SetDefault(previous)
			Level.Set(slog.LevelInfo)
		})
	})

	DescribeTable("ParseLevel",
		func(name string, want slog.Level) {
			lvl, err := ParseLevel(name)
			Expect(err).NotTo(HaveOccurred())
			Expect(lvl).To(Equal(want))
		},
		Entry("debug", "debug", slog.LevelDebug),
		Entry("empty means info", "", slog.LevelInfo),
		Entry("upper case", "WARN", slog.LevelWarn),
		Entry("error", "error", slog.LevelError),
	)

	It("should reject unknown levels", func() {
		Expect(Setup(&bytes.Buffer{}, "loud")).NotTo(Succeed())
	})

	It("should filter records below the configured level", func() {
		var buf bytes.Buffer
		Expect(Setup(&buf, "warn")).To(Succeed())

		slog.Info("icon: resolved", "icon", "kate")
		Expect(buf.String()).To(BeEmpty())

		slog.Warn("icon: skipping repeated theme", "theme", "breeze")
		Expect(buf.String()).To(ContainSubstring("skipping repeated theme"))
		Expect(buf.String()).To(ContainSubstring("theme=breeze"))
		Expect(buf.String()).NotTo(ContainSubstring("\x1b["))
	})

	It("should follow level changes at runtime", func() {
		var buf bytes.Buffer
		Expect(Setup(&buf, "info")).To(Succeed())

		slog.Debug("hidden")
		Level.Set(slog.LevelDebug)
		slog.Debug("shown")
		Expect(buf.String()).NotTo(ContainSubstring("hidden"))
		Expect(buf.String()).To(ContainSubstring("shown"))
	})
})
