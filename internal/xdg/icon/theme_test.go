package icon

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/0xADE/ade-xdgd/internal/xdg/basedir"
	"github.com/0xADE/ade-xdgd/internal/xdg/ini"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

const breezeIndex = `[Icon Theme]
Name=Breeze
Inherits=parent
Directories=48x48/apps,scalable/apps
ScaledDirectories=48x48@2/apps

[48x48/apps]
Size=48
Type=Fixed

[scalable/apps]
Size=48
Type=Scalable
MinSize=8
MaxSize=512

[48x48@2/apps]
Size=48
Scale=2
Type=Fixed
`

var _ = Describe("LoadTheme", func() {
	var (
		tmpDir   string
		extraDir string
		env      basedir.Env
	)

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "ade-xdgd-theme-*")
		Expect(err).NotTo(HaveOccurred())
		extraDir = filepath.Join(tmpDir, "X")
		env = basedir.Env{
			Home:     filepath.Join(tmpDir, "home"),
			DataHome: filepath.Join(tmpDir, "home", "share"),
			DataDirs: filepath.Join(tmpDir, "sys"),
		}
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	Context("with a valid theme and a parent", func() {
		var theme *Theme

		BeforeEach(func() {
			writeFile(filepath.Join(extraDir, "icons", "breeze", "index.theme"), breezeIndex)
			writeFile(filepath.Join(tmpDir, "sys", "icons", "parent", "index.theme"),
				"[Icon Theme]\nDirectories=32x32/apps\n[32x32/apps]\nSize=32\n")

			var err error
			theme, err = LoadTheme("breeze", []string{extraDir}, env)
			Expect(err).NotTo(HaveOccurred())
		})

		It("should be valid and read the first index", func() {
			Expect(theme.Valid()).To(BeTrue())
			Expect(theme.IndexPath).To(Equal(filepath.Join(extraDir, "icons", "breeze", "index.theme")))
			Expect(theme.DisplayName).To(Equal("Breeze"))
		})

		It("should list every base dir joined with the theme name", func() {
			Expect(theme.Dirs[0]).To(Equal(filepath.Join(extraDir, "icons", "breeze")))
			Expect(theme.Dirs).To(HaveLen(len(theme.BaseDirs)))
		})

		It("should parse Directories followed by ScaledDirectories", func() {
			Expect(theme.Subdirs).To(HaveLen(3))
			Expect(theme.Subdirs[0].Path).To(Equal("48x48/apps"))
			Expect(theme.Subdirs[2].Scale).To(Equal(2))
		})

		It("should load the parent with the same extra dirs", func() {
			Expect(theme.Parents).To(HaveLen(1))
			Expect(theme.Parents[0].Name).To(Equal("parent"))
			Expect(theme.Parents[0].Valid()).To(BeTrue())
			Expect(theme.Parents[0].ExtraDirs).To(Equal([]string{extraDir}))
		})

		It("should build the chain depth-first", func() {
			names := []string{}
			for _, t := range theme.Chain() {
				names = append(names, t.Name)
			}
			Expect(names).To(Equal([]string{"breeze", "parent"}))
		})
	})

	Context("with no index.theme anywhere", func() {
		It("should return an invalid theme without error", func() {
			theme, err := LoadTheme("ade-xdgd-missing-theme", nil, env)
			Expect(err).NotTo(HaveOccurred())
			Expect(theme.Valid()).To(BeFalse())
			Expect(theme.Subdirs).To(BeEmpty())
			Expect(theme.Parents).To(BeEmpty())
		})
	})

	Context("with an inheritance cycle", func() {
		It("should stop at the repeated theme", func() {
			writeFile(filepath.Join(extraDir, "icons", "a", "index.theme"), "[Icon Theme]\nInherits=b\n")
			writeFile(filepath.Join(extraDir, "icons", "b", "index.theme"), "[Icon Theme]\nInherits=a, c\n")
			writeFile(filepath.Join(extraDir, "icons", "c", "index.theme"), "[Icon Theme]\nInherits=a\n")

			theme, err := LoadTheme("a", []string{extraDir}, env)
			Expect(err).NotTo(HaveOccurred())
			Expect(theme.Chain()).To(HaveLen(3))
			b := theme.Parents[0]
			Expect(b.Parents).To(HaveLen(1))
			Expect(b.Parents[0].Name).To(Equal("c"))
			Expect(b.Parents[0].Parents).To(BeEmpty())
		})
	})

	Context("with a malformed index", func() {
		It("should return a ParseError", func() {
			writeFile(filepath.Join(extraDir, "icons", "bad", "index.theme"),
				"[Icon Theme]\nDirectories=d\n[d]\nSize=16\nType=Weird\n")

			_, err := LoadTheme("bad", []string{extraDir}, env)
			var pe *ini.ParseError
			Expect(errors.As(err, &pe)).To(BeTrue())
			Expect(pe.Group).To(Equal("d"))
		})

		It("should propagate errors from parents", func() {
			writeFile(filepath.Join(extraDir, "icons", "child", "index.theme"), "[Icon Theme]\nInherits=bad\n")
			writeFile(filepath.Join(extraDir, "icons", "bad", "index.theme"), "[Icon Theme\n")

			_, err := LoadTheme("child", []string{extraDir}, env)
			Expect(err).To(HaveOccurred())
		})
	})
})
