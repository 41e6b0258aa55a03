package ini

import (
	"errors"
	"strings"

	"github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = ginkgo.Describe("Parse", func() {
	var (
		input    string
		file     *File
		parseErr error
	)

	ginkgo.JustBeforeEach(func() {
		file, parseErr = Parse("test.desktop", strings.NewReader(input))
	})

	ginkgo.Context("with a well-formed desktop entry", func() {
		ginkgo.BeforeEach(func() {
			input = `# leading comment
[Desktop Entry]
Name = Filelight
Name[de]=Filelight DE
GenericName[kk]="Дарға асу" ойны
Comment=Show disk usage; find # files
Categories=Qt;KDE;Utility;

[Desktop Action Open]
Name=Open
`
		})

		ginkgo.It("should succeed", func() {
			Expect(parseErr).NotTo(HaveOccurred())
		})

		ginkgo.It("should keep groups in file order", func() {
			Expect(file.Groups).To(HaveLen(2))
			Expect(file.Groups[0].Name).To(Equal("Desktop Entry"))
			Expect(file.Groups[1].Name).To(Equal("Desktop Action Open"))
		})

		ginkgo.It("should trim whitespace around the separator", func() {
			Expect(file.Group("Desktop Entry").Value("Name")).To(Equal("Filelight"))
		})

		ginkgo.It("should not strip comments or quotes inside values", func() {
			g := file.Group("Desktop Entry")
			Expect(g.Value("Comment")).To(Equal("Show disk usage; find # files"))
			Expect(g.Value("GenericName[kk]")).To(Equal(`"Дарға асу" ойны`))
		})

		ginkgo.It("should map localized variants with the bare key as C", func() {
			Expect(file.Group("Desktop Entry").Localized("Name")).To(Equal(map[string]string{
				"C":  "Filelight",
				"de": "Filelight DE",
			}))
		})

		ginkgo.It("should return nil for an unknown group", func() {
			Expect(file.Group("Icon Theme")).To(BeNil())
		})
	})

	ginkgo.Context("with duplicate keys", func() {
		ginkgo.BeforeEach(func() {
			input = "[Icon Theme]\nInherits=a\nInherits=b\n"
		})

		ginkgo.It("should let the later entry win", func() {
			Expect(parseErr).NotTo(HaveOccurred())
			Expect(file.Group("Icon Theme").Value("Inherits")).To(Equal("b"))
		})
	})

	ginkgo.DescribeTable("malformed input",
		func(in string, line int) {
			_, err := Parse("bad.desktop", strings.NewReader(in))
			Expect(err).To(HaveOccurred())
			var pe *ParseError
			Expect(errors.As(err, &pe)).To(BeTrue())
			Expect(pe.File).To(Equal("bad.desktop"))
			Expect(pe.Line).To(Equal(line))
		},
		ginkgo.Entry("line without separator", "[Desktop Entry]\nName\n", 2),
		ginkgo.Entry("entry before any group", "Name=x\n[Desktop Entry]\n", 1),
		ginkgo.Entry("unterminated group header", "[Desktop Entry\nName=x\n", 1),
		ginkgo.Entry("empty group header", "[]\n", 1),
		ginkgo.Entry("duplicate group", "[A]\nk=v\n[A]\n", 3),
		ginkgo.Entry("empty key", "[A]\n=v\n", 2),
		ginkgo.Entry("malformed locale", "[A]\nName[de=v\n", 2),
		ginkgo.Entry("empty locale", "[A]\nName[]=v\n", 2),
		ginkgo.Entry("overlong line", "[A]\nComment="+strings.Repeat("x", maxLineSize)+"\n", 2),
	)
})

var _ = ginkgo.Describe("SplitList", func() {
	ginkgo.It("should drop empty items and trim", func() {
		Expect(SplitList("Qt; KDE;;Utility;", ";")).To(Equal([]string{"Qt", "KDE", "Utility"}))
	})

	ginkgo.It("should return nil for an empty value", func() {
		Expect(SplitList("", ",")).To(BeNil())
	})
})
