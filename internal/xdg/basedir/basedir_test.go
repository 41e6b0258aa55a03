package basedir

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Roots", func() {
	var env Env

	BeforeEach(func() {
		env = Env{Home: "/home/u"}
	})

	Context("with an empty environment", func() {
		It("should use the XDG defaults", func() {
			Expect(Roots(env, Applications, nil)).To(Equal([]string{
				"/home/u/.local/share/applications",
				"/usr/local/share/applications",
				"/usr/share/applications",
			}))
		})
	})

	Context("with extra directories", func() {
		It("should put them first in the order given", func() {
			roots := Roots(env, DesktopDirectories, []string{"/tmp/X", "/tmp/Y"})
			Expect(roots[:2]).To(Equal([]string{
				"/tmp/X/desktop-directories",
				"/tmp/Y/desktop-directories",
			}))
			Expect(roots).To(HaveLen(5))
		})
	})

	Context("with a configured environment", func() {
		BeforeEach(func() {
			env.DataHome = "/data/home"
			env.DataDirs = "/opt/share:relative/share:/usr/../etc:/usr/share/:/usr/share"
		})

		It("should drop relative and parent-traversal entries and dedupe", func() {
			Expect(Roots(env, Icons, []string{"/usr/share"})).To(Equal([]string{
				"/usr/share/icons",
				"/data/home/icons",
				"/opt/share/icons",
			}))
		})
	})

	Context("with a tilde in XDG_DATA_HOME", func() {
		BeforeEach(func() {
			env.DataHome = "~/data"
			env.DataDirs = "/usr/share"
		})

		It("should expand it against Home", func() {
			Expect(Roots(env, Applications, nil)).To(Equal([]string{
				"/home/u/data/applications",
				"/usr/share/applications",
			}))
		})
	})
})

var _ = Describe("IconBaseDirs", func() {
	It("should order extra, home icons, XDG icons, then pixmaps", func() {
		env := Env{Home: "/home/u", DataHome: "/home/u/.local/share", DataDirs: "/usr/share"}
		Expect(IconBaseDirs(env, []string{"/tmp/X"})).To(Equal([]string{
			"/tmp/X/icons",
			"/home/u/.icons",
			"/home/u/.local/share/icons",
			"/usr/share/icons",
			"/tmp/X/pixmaps",
			"/home/u/.local/share/pixmaps",
			"/usr/share/pixmaps",
		}))
	})
})
