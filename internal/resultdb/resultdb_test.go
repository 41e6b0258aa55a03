package resultdb

import (
	"os"
	"path/filepath"

	"github.com/0xADE/ade-xdgd/internal/indexer"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Store", func() {
	var (
		store  *Store
		tmpDir string
		dbPath string
	)

	filelight := &indexer.Entry{
		ID:          "org.kde.filelight",
		Name:        "Filelight",
		Names:       map[string]string{"C": "Filelight", "de": "Filelight"},
		DesktopPath: "/usr/share/applications/org.kde.filelight.desktop",
		IconName:    "filelight",
		IconPath:    "/usr/share/icons/breeze/apps/48/filelight.svg",
		Categories:  []string{"Utility"},
		Visible:     true,
	}
	kate := &indexer.Entry{
		ID:          "org.kde.kate",
		Name:        "Kate",
		DesktopPath: "/usr/share/applications/org.kde.kate.desktop",
		Visible:     true,
	}

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "ade-resultdb-test-*")
		Expect(err).NotTo(HaveOccurred())

		dbPath = filepath.Join(tmpDir, "ade", dbFile)
		store, err = Open(dbPath)
		Expect(err).NotTo(HaveOccurred())
		Expect(store).NotTo(BeNil())
	})

	AfterEach(func() {
		if store != nil {
			Expect(store.Close()).To(Succeed())
		}
		Expect(os.RemoveAll(tmpDir)).To(Succeed())
	})

	Describe("Open", func() {
		It("should create the parent directory and the database file", func() {
			Expect(filepath.Join(tmpDir, "ade")).To(BeADirectory())
			Expect(dbPath).To(BeAnExistingFile())
		})
	})

	Describe("Put and Get", func() {
		It("should return what was stored", func() {
			Expect(store.Put(filelight)).To(Succeed())

			entry, ok, err := store.Get(filelight.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())
			Expect(entry).To(Equal(filelight))
		})

		It("should report unknown IDs", func() {
			_, ok, err := store.Get("org.kde.missing")
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())
		})

		It("should survive reopening", func() {
			Expect(store.Put(kate)).To(Succeed())
			Expect(store.Close()).To(Succeed())

			var err error
			store, err = Open(dbPath)
			Expect(err).NotTo(HaveOccurred())
			_, ok, err := store.Get(kate.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())
		})
	})

	Describe("Replace", func() {
		It("should drop entries that are not in the new set", func() {
			Expect(store.Put(kate)).To(Succeed())
			Expect(store.Replace([]*indexer.Entry{filelight})).To(Succeed())

			all, err := store.All()
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(HaveLen(1))
			Expect(all[0].ID).To(Equal(filelight.ID))
		})

		It("should keep lookup counts", func() {
			Expect(store.Hit(kate.ID)).To(Succeed())
			Expect(store.Replace(nil)).To(Succeed())
			Expect(store.Hits([]string{kate.ID})[kate.ID]).To(Equal(uint64(1)))
		})
	})

	Describe("All", func() {
		It("should list entries ordered by ID", func() {
			Expect(store.Put(kate)).To(Succeed())
			Expect(store.Put(filelight)).To(Succeed())

			all, err := store.All()
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(HaveLen(2))
			Expect(all[0].ID).To(Equal("org.kde.filelight"))
			Expect(all[1].ID).To(Equal("org.kde.kate"))
		})
	})

	Describe("Hit", func() {
		It("should count lookups per ID", func() {
			Expect(store.Hits([]string{kate.ID})[kate.ID]).To(Equal(uint64(0)))

			Expect(store.Hit(kate.ID)).To(Succeed())
			Expect(store.Hit(kate.ID)).To(Succeed())
			Expect(store.Hit(filelight.ID)).To(Succeed())

			hits := store.Hits([]string{kate.ID, filelight.ID, "org.kde.other"})
			Expect(hits[kate.ID]).To(Equal(uint64(2)))
			Expect(hits[filelight.ID]).To(Equal(uint64(1)))
			Expect(hits["org.kde.other"]).To(Equal(uint64(0)))
		})
	})
})
