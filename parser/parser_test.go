package parser

import (
	"io"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ParseCommand", func() {
	var (
		input    string
		reader   *strings.Reader
		parser   *Parser
		cmd      *Command
		parseErr error
	)

	JustBeforeEach(func() {
		reader = strings.NewReader(input)
		parser, parseErr = NewParser(reader)
		Expect(parseErr).NotTo(HaveOccurred())

		cmd, parseErr = parser.ParseCommand()
		Expect(parseErr).NotTo(HaveOccurred())
	})

	Context("when parsing reindex command with arguments", func() {
		BeforeEach(func() {
			input = `TXT01
"org.kde.kate
"org.kde.filelight
reindex
`
		})

		It("should parse command name correctly", func() {
			Expect(cmd.Name).To(Equal("reindex"))
			Expect(parser.Version()).To(Equal("01"))
		})

		It("should parse both arguments as strings", func() {
			ids, err := cmd.Strings()
			Expect(err).NotTo(HaveOccurred())
			Expect(ids).To(Equal([]string{"org.kde.kate", "org.kde.filelight"}))
		})
	})

	Context("when parsing reindex command without arguments", func() {
		BeforeEach(func() {
			input = `TXT01
reindex
`
		})

		It("should have no arguments", func() {
			Expect(cmd.Name).To(Equal("reindex"))
			Expect(cmd.Args).To(HaveLen(0))
		})
	})

	Context("when parsing an icon lookup", func() {
		BeforeEach(func() {
			input = `TXT01
# comments and blank lines are ignored

"preferences-system
48
2
icon
`
		})

		It("should parse mixed argument types", func() {
			Expect(cmd.Name).To(Equal("icon"))
			name, err := cmd.String(0)
			Expect(err).NotTo(HaveOccurred())
			Expect(name).To(Equal("preferences-system"))

			size, err := cmd.Int(1)
			Expect(err).NotTo(HaveOccurred())
			Expect(size).To(Equal(48))

			scale, err := cmd.Int(2)
			Expect(err).NotTo(HaveOccurred())
			Expect(scale).To(Equal(2))
		})

		It("should report type mismatches and missing arguments", func() {
			_, err := cmd.Int(0)
			Expect(err).To(MatchError(ContainSubstring("expected int")))
			_, err = cmd.String(1)
			Expect(err).To(MatchError(ContainSubstring("expected string")))
			_, err = cmd.Int(3)
			Expect(err).To(MatchError(ContainSubstring("missing argument 4")))
			_, err = cmd.Strings()
			Expect(err).To(HaveOccurred())
		})
	})

	Context("when a string keeps its spaces and quotes", func() {
		BeforeEach(func() {
			input = `TXT01
"/opt/My Apps/share "x"
+dir
`
		})

		It("should take the value verbatim", func() {
			Expect(cmd.Args[0].Str).To(Equal(`/opt/My Apps/share "x"`))
		})
	})

	Context("when the last command has no trailing newline", func() {
		BeforeEach(func() {
			input = "TXT01\n\"KDE\nenv"
		})

		It("should still return it", func() {
			Expect(cmd.Name).To(Equal("env"))
			Expect(cmd.Args).To(HaveLen(1))
			Expect(cmd.Args[0].Str).To(Equal("KDE"))
		})
	})
})

var _ = Describe("NewParser", func() {
	It("should reject a missing header", func() {
		_, err := NewParser(strings.NewReader("TX"))
		Expect(err).To(MatchError("invalid header"))
	})

	It("should reject an unknown format", func() {
		_, err := NewParser(strings.NewReader("BIN01\n"))
		Expect(err).To(MatchError(ContainSubstring("unsupported format")))
	})
})

var _ = Describe("ReadAllCommands", func() {
	It("should read a pipeline of commands", func() {
		p, err := NewParser(strings.NewReader(`TXT01
"KDE
env
t
"org.kde.kate
resolve
list
`))
		Expect(err).NotTo(HaveOccurred())

		cmds, err := p.ReadAllCommands()
		Expect(err).NotTo(HaveOccurred())
		Expect(cmds).To(HaveLen(3))
		Expect(cmds[1].Args).To(HaveLen(2))
		Expect(cmds[1].Args[0]).To(Equal(Value{Type: TypeBool, Bool: true}))
		Expect(cmds[2].Name).To(Equal("list"))
	})

	It("should fail on an unknown word", func() {
		p, err := NewParser(strings.NewReader("TXT01\nfrobnicate\n"))
		Expect(err).NotTo(HaveOccurred())
		_, err = p.ReadAllCommands()
		Expect(err).To(MatchError(ContainSubstring("cannot parse value: frobnicate")))
	})

	It("should fail on values left without a command", func() {
		p, err := NewParser(strings.NewReader("TXT01\n\"dangling\n"))
		Expect(err).NotTo(HaveOccurred())
		_, err = p.ReadAllCommands()
		Expect(err).To(MatchError(ContainSubstring("without a command")))
	})

	It("should return io.EOF once input is drained", func() {
		p, err := NewParser(strings.NewReader("TXT01\n"))
		Expect(err).NotTo(HaveOccurred())
		_, err = p.ParseCommand()
		Expect(err).To(Equal(io.EOF))
	})
})
