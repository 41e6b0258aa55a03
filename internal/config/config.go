package config

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/Xuanwo/go-locale"
	"github.com/fsnotify/fsnotify"
	"github.com/kelseyhightower/envconfig"
	"github.com/mitchellh/go-homedir"
	"golang.org/x/text/language"

	"github.com/0xADE/ade-xdgd/internal/xdg/basedir"
)

const xdgrc = "~/.config/ade/xdgd.rc"

var (
	globalConfig *config
	once         sync.Once
)

type config struct {
	static  env
	base    basedir.Env
	rcPath  string
	dynamic rc
	watcher *fsnotify.Watcher
}

type (
	env struct {
		UnixSocket string        `envconfig:"ADE_XDGD_SOCK"`
		Workers    int           `envconfig:"ADE_XDGD_WORKERS" default:"4"`
		Theme      string        `envconfig:"ADE_ICON_THEME" default:"breeze"`
		IconSize   int           `envconfig:"ADE_ICON_SIZE" default:"48"`
		IconScale  int           `envconfig:"ADE_ICON_SCALE" default:"1"`
		DesktopEnv string        `envconfig:"XDG_CURRENT_DESKTOP"`
		Lang       string        `envconfig:"ADE_XDGD_LANG"`
		DBPath     string        `envconfig:"ADE_XDGD_DB"`
		ThemeTTL   time.Duration `envconfig:"ADE_XDGD_THEME_TTL" default:"5m"`
		LogLevel   string        `envconfig:"ADE_LOG_LEVEL" default:"info"`
		RCPath     string        `envconfig:"ADE_XDGD_RC"`
	}
	rc struct {
		sync.RWMutex
		extraDirs []string
	}
)

// Init initializes and loads configuration
func Init() error {
	var err error
	once.Do(func() {
		globalConfig, err = load()
	})
	return err
}

// Run starts the configuration watcher loop
func Run() error {
	if globalConfig == nil {
		if err := Init(); err != nil {
			return err
		}
	}

	go globalConfig.watchLoop()
	return nil
}

// Get returns the global config instance
func Get() *config {
	if globalConfig == nil {
		Init()
	}
	return globalConfig
}

func load() (*config, error) {
	c := &config{}

	if err := envconfig.Process("", &c.static); err != nil {
		return nil, err
	}
	base, err := basedir.LoadEnv()
	if err != nil {
		return nil, err
	}
	c.base = base

	// Set default socket path if not provided
	if c.static.UnixSocket == "" {
		currentUser, err := user.Current()
		if err != nil {
			return nil, err
		}
		c.static.UnixSocket = fmt.Sprintf("/tmp/ade-%s/xdgd", currentUser.Uid)
	}
	c.static.UnixSocket = expandPath(c.static.UnixSocket)
	c.static.DBPath = expandPath(c.static.DBPath)

	if c.static.Lang == "" {
		c.static.Lang = detectLang()
	}

	c.rcPath = c.static.RCPath
	if c.rcPath == "" {
		c.rcPath = xdgrc
	}
	c.rcPath = expandPath(c.rcPath)

	if err := c.loadRC(); err != nil {
		return nil, err
	}
	if err := c.setupWatcher(); err != nil {
		return nil, err
	}
	return c, nil
}

// detectLang returns the POSIX form (de_DE) of the user's locale, or an
// empty string when none is set.
func detectLang() string {
	tag, err := locale.Detect()
	if err != nil {
		return ""
	}
	return posixLocale(tag)
}

func posixLocale(tag language.Tag) string {
	base, conf := tag.Base()
	if conf != language.Exact {
		return ""
	}
	if region, conf := tag.Region(); conf == language.Exact && region.IsCountry() {
		return base.String() + "_" + region.String()
	}
	return base.String()
}

func (c *config) loadRC() error {
	// Create directory if it doesn't exist
	rcDir := filepath.Dir(c.rcPath)
	if err := os.MkdirAll(rcDir, 0750); err != nil {
		return err
	}

	file, err := os.Open(c.rcPath)
	if err != nil {
		if os.IsNotExist(err) {
			// Create empty file
			file, err = os.Create(c.rcPath)
			if err != nil {
				return err
			}
			file.Close()
			c.setExtraDirs(nil)
			return nil
		}
		return err
	}
	defer file.Close()

	var dirs []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		dirs = append(dirs, expandPath(line))
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	c.setExtraDirs(dirs)
	return nil
}

func (c *config) setExtraDirs(dirs []string) {
	c.dynamic.Lock()
	defer c.dynamic.Unlock()
	c.dynamic.extraDirs = dirs
}

func (c *config) setupWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	// Watch the directory, editors replace the file on save
	if err := watcher.Add(filepath.Dir(c.rcPath)); err != nil {
		watcher.Close()
		return err
	}
	c.watcher = watcher
	return nil
}

func (c *config) watchLoop() {
	for {
		select {
		case event, ok := <-c.watcher.Events:
			if !ok {
				return
			}
			if event.Name == c.rcPath && event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				if err := c.loadRC(); err != nil {
					slog.Error("config: reloading rc file", "path", c.rcPath, "error", err)
					continue
				}
				slog.Info("config: rc file reloaded", "path", c.rcPath, "dirs", c.ExtraDirs())
			}
		case err, ok := <-c.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("config: watcher error", "error", err)
		}
	}
}

// Close stops the rc file watcher
func (c *config) Close() error {
	if c.watcher != nil {
		return c.watcher.Close()
	}
	return nil
}

// ExtraDirs returns the extra data directories listed in the rc file
func (c *config) ExtraDirs() []string {
	c.dynamic.RLock()
	defer c.dynamic.RUnlock()
	return append([]string(nil), c.dynamic.extraDirs...)
}

// BaseEnv returns the XDG environment the search roots derive from
func (c *config) BaseEnv() basedir.Env {
	return c.base
}

// RCPath returns the location of the rc file
func (c *config) RCPath() string {
	return c.rcPath
}

// UnixSocket returns the Unix socket path
func (c *config) UnixSocket() string {
	return c.static.UnixSocket
}

// Workers returns the number of worker goroutines for indexing
func (c *config) Workers() int {
	if c.static.Workers <= 0 {
		return 4 // Default
	}
	return c.static.Workers
}

// Theme returns the icon theme name
func (c *config) Theme() string {
	if c.static.Theme == "" {
		return "breeze"
	}
	return c.static.Theme
}

// IconSize returns the requested icon size in logical pixels
func (c *config) IconSize() int {
	if c.static.IconSize <= 0 {
		return 48
	}
	return c.static.IconSize
}

// IconScale returns the requested icon scale
func (c *config) IconScale() int {
	if c.static.IconScale <= 0 {
		return 1
	}
	return c.static.IconScale
}

// DesktopEnv returns the first name in XDG_CURRENT_DESKTOP
func (c *config) DesktopEnv() string {
	name, _, _ := strings.Cut(c.static.DesktopEnv, ":")
	return name
}

// Lang returns the POSIX locale used for localized names
func (c *config) Lang() string {
	return c.static.Lang
}

// DBPath returns the result store location, empty for the default
func (c *config) DBPath() string {
	return c.static.DBPath
}

// ThemeTTL returns how long a loaded theme may be reused
func (c *config) ThemeTTL() time.Duration {
	return c.static.ThemeTTL
}

// LogLevel returns the configured log level name
func (c *config) LogLevel() string {
	return c.static.LogLevel
}

func expandPath(path string) string {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return path
	}
	return expanded
}
