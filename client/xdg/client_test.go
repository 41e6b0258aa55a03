package xdg

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/0xADE/ade-xdgd/internal/indexer"
	"github.com/0xADE/ade-xdgd/internal/xdg/basedir"
	"github.com/0xADE/ade-xdgd/server"

	"github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func writeFile(path, content string) {
	Expect(os.MkdirAll(filepath.Dir(path), 0755)).To(Succeed())
	Expect(os.WriteFile(path, []byte(content), 0644)).To(Succeed())
}

var _ = ginkgo.Describe("FormatArgument", func() {
	ginkgo.DescribeTable("typing raw arguments",
		func(arg, want string) {
			Expect(FormatArgument(arg)).To(Equal(want))
		},
		ginkgo.Entry("plain word becomes a string", "org.kde.kate", `"org.kde.kate`),
		ginkgo.Entry("quoted string is kept", `"48`, `"48`),
		ginkgo.Entry("integer", "48", "48"),
		ginkgo.Entry("boolean", "t", "t"),
		ginkgo.Entry("surrounding space is trimmed", "  breeze ", `"breeze`),
	)
})

var _ = ginkgo.Describe("Client", func() {
	var (
		tmpDir   string
		extraDir string
		iconPath string
		srv      *server.Server
		idx      *indexer.Indexer
		client   *Client
		cancel   context.CancelFunc
	)

	ginkgo.BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "xdgc-*")
		Expect(err).NotTo(HaveOccurred())
		extraDir = filepath.Join(tmpDir, "X")
		env := basedir.Env{
			Home:     filepath.Join(tmpDir, "home"),
			DataHome: filepath.Join(tmpDir, "home", "share"),
			DataDirs: filepath.Join(tmpDir, "sys"),
		}

		writeFile(filepath.Join(extraDir, "icons", "hicolor", "index.theme"), `[Icon Theme]
Directories=48x48/apps

[48x48/apps]
Size=48
`)
		iconPath = filepath.Join(extraDir, "icons", "hicolor", "48x48", "apps", "ade-xdgd-dolphin.png")
		writeFile(iconPath, "")
		writeFile(filepath.Join(extraDir, "applications", "org.kde.dolphin.desktop"), `[Desktop Entry]
Name=Dolphin
Name[fr]=Dauphin
Icon=ade-xdgd-dolphin
Categories=System;FileManager;
`)

		idx, err = indexer.NewIndexer(indexer.Options{Env: env, ExtraDirs: []string{extraDir}})
		Expect(err).NotTo(HaveOccurred())

		socket := filepath.Join(tmpDir, "sock")
		srv, err = server.NewServer(idx, nil, server.Options{
			SocketPath: socket,
			Env:        env,
			ExtraDirs:  func() []string { return []string{extraDir} },
			Theme:      "breeze",
		})
		Expect(err).NotTo(HaveOccurred())

		var ctx context.Context
		ctx, cancel = context.WithCancel(context.Background())
		go srv.Start(ctx)

		client, err = Dial(socket)
		Expect(err).NotTo(HaveOccurred())
	})

	ginkgo.AfterEach(func() {
		client.Close()
		cancel()
		srv.Stop()
		idx.Stop()
		os.RemoveAll(tmpDir)
	})

	ginkgo.It("should describe a desktop entry", func() {
		attrs, err := client.Desktop("org.kde.dolphin", "")
		Expect(err).NotTo(HaveOccurred())
		Expect(attrs).To(HaveKeyWithValue("icon", "ade-xdgd-dolphin"))
		Expect(attrs).To(HaveKeyWithValue("categories", "System;FileManager"))
	})

	ginkgo.It("should resolve an icon through the hicolor fallback", func() {
		path, err := client.Icon("ade-xdgd-dolphin", 48, 1)
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal(iconPath))
	})

	ginkgo.It("should resolve a desktop ID end to end", func() {
		desktopPath, icon, err := client.Resolve("org.kde.dolphin")
		Expect(err).NotTo(HaveOccurred())
		Expect(desktopPath).To(Equal(filepath.Join(extraDir, "applications", "org.kde.dolphin.desktop")))
		Expect(icon).To(Equal(iconPath))
	})

	ginkgo.It("should return server errors as ServerError", func() {
		_, _, err := client.Resolve("org.kde.nothing")
		var serr *ServerError
		Expect(errors.As(err, &serr)).To(BeTrue())
		Expect(serr.NotFound()).To(BeTrue())
		Expect(serr.Cmd).To(Equal("resolve"))

		// the connection is still usable
		valid, err := client.SetTheme("hicolor")
		Expect(err).NotTo(HaveOccurred())
		Expect(valid).To(BeTrue())
	})

	ginkgo.It("should reindex and list with the session language", func() {
		Expect(client.SetLang("fr_FR")).To(Succeed())
		Expect(client.SetEnv("KDE")).To(Succeed())

		indexed, failed, err := client.Reindex()
		Expect(err).NotTo(HaveOccurred())
		Expect(indexed).To(Equal(1))
		Expect(failed).To(Equal(0))

		entries, err := client.List()
		Expect(err).NotTo(HaveOccurred())
		Expect(entries).To(Equal([]Entry{{ID: "org.kde.dolphin", IconPath: iconPath, Name: "Dauphin"}}))
	})

	ginkgo.It("should manage extra directories per connection", func() {
		other := filepath.Join(tmpDir, "other")
		writeFile(filepath.Join(other, "applications", "org.kde.konsole.desktop"), "[Desktop Entry]\nName=Konsole\n")

		_, err := client.Desktop("org.kde.konsole", "")
		Expect(err).To(HaveOccurred())

		Expect(client.AddDirs(other)).To(Succeed())
		attrs, err := client.Desktop("org.kde.konsole", "")
		Expect(err).NotTo(HaveOccurred())
		Expect(attrs).To(HaveKeyWithValue("name", "Konsole"))

		Expect(client.ResetDirs()).To(Succeed())
		_, err = client.Desktop("org.kde.konsole", "")
		Expect(err).To(HaveOccurred())
	})

	ginkgo.It("should pass raw commands through SendCommand", func() {
		Expect(client.SendCommand("lang", []string{"de"})).To(Succeed())
		resp, err := client.ReadResponse()
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.Attrs).To(HaveKeyWithValue("lang", "de"))
	})
})
