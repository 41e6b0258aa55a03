package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bluele/gcache"
	"github.com/hashicorp/go-multierror"

	"github.com/0xADE/ade-xdgd/internal/indexer"
	"github.com/0xADE/ade-xdgd/internal/resultdb"
	"github.com/0xADE/ade-xdgd/internal/xdg/basedir"
	"github.com/0xADE/ade-xdgd/internal/xdg/desktop"
	"github.com/0xADE/ade-xdgd/internal/xdg/icon"
	"github.com/0xADE/ade-xdgd/internal/xdg/ini"
	"github.com/0xADE/ade-xdgd/parser"
)

const themeCacheSize = 32

// Options are the defaults every connection starts from.
type Options struct {
	SocketPath string
	Env        basedir.Env
	// ExtraDirs is consulted on every request so rc file reloads apply to
	// open connections.
	ExtraDirs  func() []string
	Theme      string
	Size       int
	Scale      int
	DesktopEnv string
	Lang       string
	// ThemeTTL bounds how long a loaded theme is reused. Zero disables the
	// cache.
	ThemeTTL time.Duration
}

// Server handles Unix socket connections and command execution
type Server struct {
	listener net.Listener
	indexer  *indexer.Indexer
	store    *resultdb.Store
	opts     Options
	themes   gcache.Cache
	running  bool
	mu       sync.RWMutex
}

// session is the per-connection state changed by theme, env, lang and the
// dir commands.
type session struct {
	theme      string
	desktopEnv string
	lang       string
	dirs       []string
}

// NewServer creates a new server instance listening on opts.SocketPath.
// store may be nil.
func NewServer(idx *indexer.Indexer, store *resultdb.Store, opts Options) (*Server, error) {
	s := newServer(idx, store, opts)

	// Create directory if needed
	socketDir := filepath.Dir(opts.SocketPath)
	if err := os.MkdirAll(socketDir, 0755); err != nil {
		return nil, err
	}

	// Remove existing socket if it exists
	os.Remove(opts.SocketPath)

	listener, err := net.Listen("unix", opts.SocketPath)
	if err != nil {
		return nil, err
	}
	s.listener = listener
	return s, nil
}

func newServer(idx *indexer.Indexer, store *resultdb.Store, opts Options) *Server {
	if opts.ExtraDirs == nil {
		opts.ExtraDirs = func() []string { return nil }
	}
	if opts.Theme == "" {
		opts.Theme = icon.FallbackTheme
	}
	if opts.Size < 1 {
		opts.Size = 48
	}
	if opts.Scale < 1 {
		opts.Scale = 1
	}

	s := &Server{
		indexer: idx,
		store:   store,
		opts:    opts,
	}
	if opts.ThemeTTL > 0 {
		s.themes = gcache.New(themeCacheSize).LRU().Expiration(opts.ThemeTTL).Build()
	}
	return s
}

// Start starts the server
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	s.running = true
	s.mu.Unlock()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		conn, err := s.listener.Accept()
		if err != nil {
			s.mu.RLock()
			running := s.running
			s.mu.RUnlock()
			if !running || errors.Is(err, net.ErrClosed) {
				return nil
			}
			slog.Warn("server: accept failed", "error", err)
			continue
		}

		go s.handleConnection(conn)
	}
}

// Stop stops the server
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	return s.listener.Close()
}

func (s *Server) newSession() *session {
	return &session{
		theme:      s.opts.Theme,
		desktopEnv: s.opts.DesktopEnv,
		lang:       s.opts.Lang,
	}
}

// extraDirs puts the connection's dirs ahead of the configured ones.
func (s *Server) extraDirs(sess *session) []string {
	return append(append([]string(nil), sess.dirs...), s.opts.ExtraDirs()...)
}

func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	slog.Debug("server: connection accepted")

	p, err := parser.NewParser(conn)
	if err != nil {
		s.writeError(conn, "parser", "invalid header", err.Error())
		return
	}

	sess := s.newSession()
	for {
		cmd, err := p.ParseCommand()
		if err == io.EOF {
			slog.Debug("server: connection closed by client")
			break
		}
		if err != nil {
			s.writeError(conn, "parser", "parse error", err.Error())
			break
		}

		slog.Debug("server: executing command", "cmd", cmd.Name, "args", len(cmd.Args))
		s.executeCommand(conn, sess, cmd)
	}
}

func (s *Server) executeCommand(conn net.Conn, sess *session, cmd *parser.Command) {
	switch cmd.Name {
	case "desktop":
		s.handleDesktop(conn, sess, cmd)
	case "icon":
		s.handleIcon(conn, sess, cmd)
	case "resolve":
		s.handleResolve(conn, sess, cmd)
	case "theme":
		s.handleTheme(conn, sess, cmd)
	case "+dir":
		s.handleAddDir(conn, sess, cmd)
	case "0dirs":
		sess.dirs = nil
		s.writeResponse(conn, "cmd: 0dirs\nstatus: 0\n\n")
	case "env":
		s.handleEnv(conn, sess, cmd)
	case "lang":
		s.handleLang(conn, sess, cmd)
	case "reindex":
		s.handleReindex(conn, cmd)
	case "list":
		s.handleList(conn, sess)
	default:
		s.writeError(conn, cmd.Name, "unknown command", "Command not recognized")
	}
}

func (s *Server) handleDesktop(conn net.Conn, sess *session, cmd *parser.Command) {
	id, err := cmd.String(0)
	if err != nil {
		s.writeError(conn, "desktop", "invalid argument", err.Error())
		return
	}
	kind := desktop.Applications
	if len(cmd.Args) > 1 {
		name, err := cmd.String(1)
		if err != nil {
			s.writeError(conn, "desktop", "invalid argument", err.Error())
			return
		}
		var ok bool
		if kind, ok = desktop.KindByName(name); !ok {
			s.writeError(conn, "desktop", "invalid argument", fmt.Sprintf("unknown kind %q", name))
			return
		}
	}

	d, err := desktop.NewLocator(kind, s.opts.Env, s.extraDirs(sess)).Find(id)
	if err != nil {
		s.writeLookupError(conn, "desktop", err)
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "cmd: desktop\nstatus: 0\nid: %s\npath: %s\n", id, d.Path())
	fmt.Fprintf(&b, "name: %s\n", d.LocalizedValue("Name", sess.lang))
	fmt.Fprintf(&b, "icon: %s\n", d.Icon())
	fmt.Fprintf(&b, "categories: %s\n", strings.Join(d.Categories(), ";"))
	fmt.Fprintf(&b, "display: %s\nhidden: %s\n", flag(d.Display()), flag(d.Hidden()))
	if sess.desktopEnv != "" {
		fmt.Fprintf(&b, "show: %s\n", flag(d.ShowIn(sess.desktopEnv)))
	}
	b.WriteString("\n")
	s.writeResponse(conn, b.String())
}

func (s *Server) handleIcon(conn net.Conn, sess *session, cmd *parser.Command) {
	name, err := cmd.String(0)
	if err != nil {
		s.writeError(conn, "icon", "invalid argument", err.Error())
		return
	}
	size, scale := s.opts.Size, s.opts.Scale
	if len(cmd.Args) > 1 {
		if size, err = cmd.Int(1); err != nil {
			s.writeError(conn, "icon", "invalid argument", err.Error())
			return
		}
	}
	if len(cmd.Args) > 2 {
		if scale, err = cmd.Int(2); err != nil {
			s.writeError(conn, "icon", "invalid argument", err.Error())
			return
		}
	}
	if size < 1 || scale < 1 {
		s.writeError(conn, "icon", "invalid argument", "size and scale must be positive")
		return
	}

	theme, err := s.theme(sess)
	if err != nil {
		s.writeLookupError(conn, "icon", err)
		return
	}
	var resolver icon.Resolver
	path, err := resolver.Resolve(name, size, scale, theme)
	if err != nil {
		s.writeLookupError(conn, "icon", err)
		return
	}
	s.writeResponse(conn, fmt.Sprintf("cmd: icon\nstatus: 0\ntheme: %s\npath: %s\n\n", theme.Name, path))
}

// handleResolve runs the full desktop ID to icon file pipeline. A missing
// icon is reported in the attrs, only a missing desktop file is an error.
func (s *Server) handleResolve(conn net.Conn, sess *session, cmd *parser.Command) {
	id, err := cmd.String(0)
	if err != nil {
		s.writeError(conn, "resolve", "invalid argument", err.Error())
		return
	}

	d, err := desktop.NewLocator(desktop.Applications, s.opts.Env, s.extraDirs(sess)).Find(id)
	if err != nil {
		s.writeLookupError(conn, "resolve", err)
		return
	}
	if s.store != nil {
		if err := s.store.Hit(id); err != nil {
			slog.Warn("server: recording lookup", "id", id, "error", err)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "cmd: resolve\nstatus: 0\nid: %s\ndesktop: %s\nicon-name: %s\n", id, d.Path(), d.Icon())
	if d.Icon() != "" {
		path, err := s.resolveIcon(sess, d.Icon())
		switch {
		case err == nil:
			fmt.Fprintf(&b, "icon: %s\n", path)
		case errors.Is(err, icon.ErrNotFound):
			b.WriteString("icon-error: not found\n")
		default:
			slog.Warn("server: resolving icon", "id", id, "icon", d.Icon(), "error", err)
			fmt.Fprintf(&b, "icon-error: %s\n", errorType(err))
		}
	}
	b.WriteString("\n")
	s.writeResponse(conn, b.String())
}

func (s *Server) handleTheme(conn net.Conn, sess *session, cmd *parser.Command) {
	name, err := cmd.String(0)
	if err != nil || name == "" {
		s.writeError(conn, "theme", "invalid argument", "theme command requires a theme name")
		return
	}
	previous := sess.theme
	sess.theme = name
	theme, err := s.theme(sess)
	if err != nil {
		sess.theme = previous
		s.writeLookupError(conn, "theme", err)
		return
	}
	s.writeResponse(conn, fmt.Sprintf("cmd: theme\nstatus: 0\ntheme: %s\nvalid: %s\n\n", name, flag(theme.Valid())))
}

func (s *Server) handleAddDir(conn net.Conn, sess *session, cmd *parser.Command) {
	dirs, err := cmd.Strings()
	if err != nil {
		s.writeError(conn, "+dir", "invalid argument", err.Error())
		return
	}
	for _, dir := range dirs {
		sess.dirs = append(sess.dirs, s.opts.Env.Expand(dir))
	}
	s.writeResponse(conn, fmt.Sprintf("cmd: +dir\nstatus: 0\ndirs: %s\n\n", strings.Join(sess.dirs, ":")))
}

func (s *Server) handleEnv(conn net.Conn, sess *session, cmd *parser.Command) {
	name, err := cmd.String(0)
	if err != nil {
		s.writeError(conn, "env", "invalid argument", "env command requires a desktop name")
		return
	}
	sess.desktopEnv = name
	s.writeResponse(conn, fmt.Sprintf("cmd: env\nstatus: 0\nenv: %s\n\n", name))
}

func (s *Server) handleLang(conn net.Conn, sess *session, cmd *parser.Command) {
	lang, err := cmd.String(0)
	if err != nil {
		s.writeError(conn, "lang", "missing parameter", "lang command requires a string parameter")
		return
	}
	sess.lang = lang
	s.writeResponse(conn, fmt.Sprintf("cmd: lang\nstatus: 0\nlang: %s\n\n", lang))
}

func (s *Server) handleReindex(conn net.Conn, cmd *parser.Command) {
	ids, err := cmd.Strings()
	if err != nil {
		s.writeError(conn, "reindex", "invalid argument", err.Error())
		return
	}

	count, err := s.indexer.Reindex(context.Background(), ids)
	failed := 0
	if err != nil {
		var merr *multierror.Error
		if !errors.As(err, &merr) {
			s.writeError(conn, "reindex", "reindex failed", err.Error())
			return
		}
		failed = len(merr.Errors)
		slog.Warn("server: reindex finished with errors", "failed", failed, "error", err)
	}

	if s.store != nil {
		if err := s.store.Replace(s.indexer.GetIndex().GetAll()); err != nil {
			slog.Error("server: saving results", "error", err)
		}
	}

	s.writeResponse(conn, fmt.Sprintf("cmd: reindex\nstatus: 0\nindexed: %d\nfailed: %d\n\n", count, failed))
}

// handleList sends one line per indexed entry: id, icon path ("-" when
// unresolved) and the name in the session language.
func (s *Server) handleList(conn net.Conn, sess *session) {
	entries := s.indexer.GetIndex().GetAll()

	var b strings.Builder
	fmt.Fprintf(&b, "cmd: list\nstatus: 0\nlist-len: %d\nbody:\n", len(entries))
	for _, entry := range entries {
		iconPath := entry.IconPath
		if iconPath == "" {
			iconPath = "-"
		}
		name := entry.Name
		if localized := desktop.PickLocale(entry.Names, sess.lang); localized != "" {
			name = localized
		}
		fmt.Fprintf(&b, "%s %s %s\n", entry.ID, iconPath, name)
	}
	b.WriteString("\n")
	s.writeResponse(conn, b.String())
}

func (s *Server) resolveIcon(sess *session, name string) (string, error) {
	theme, err := s.theme(sess)
	if err != nil {
		return "", err
	}
	var resolver icon.Resolver
	return resolver.Resolve(name, s.opts.Size, s.opts.Scale, theme)
}

// theme returns the session's theme, from the cache when enabled.
func (s *Server) theme(sess *session) (*icon.Theme, error) {
	dirs := s.extraDirs(sess)
	if s.themes == nil {
		return icon.LoadTheme(sess.theme, dirs, s.opts.Env)
	}

	key := sess.theme + "\x00" + strings.Join(dirs, ":")
	if cached, err := s.themes.Get(key); err == nil {
		return cached.(*icon.Theme), nil
	}
	theme, err := icon.LoadTheme(sess.theme, dirs, s.opts.Env)
	if err != nil {
		return nil, err
	}
	if err := s.themes.Set(key, theme); err != nil {
		slog.Warn("server: caching theme", "theme", sess.theme, "error", err)
	}
	return theme, nil
}

// writeLookupError maps resolution errors to protocol error types.
func (s *Server) writeLookupError(conn net.Conn, cmd string, err error) {
	s.writeError(conn, cmd, errorType(err), err.Error())
}

func errorType(err error) string {
	var perr *ini.ParseError
	switch {
	case errors.Is(err, desktop.ErrNotFound), errors.Is(err, icon.ErrNotFound):
		return "not found"
	case errors.Is(err, desktop.ErrAmbiguous):
		return "ambiguous"
	case errors.As(err, &perr):
		return "parse error"
	default:
		return "internal error"
	}
}

// writeResponse writes a response with TXT01 header
func (s *Server) writeResponse(conn net.Conn, response string) {
	if _, err := conn.Write([]byte("TXT01" + response)); err != nil {
		slog.Error("server: writing response", "error", err)
	}
}

func (s *Server) writeError(conn net.Conn, cmd, errType, desc string) {
	slog.Debug("server: error response", "cmd", cmd, "type", errType, "desc", desc)
	desc = strings.ReplaceAll(desc, "\n", " ")
	s.writeResponse(conn, fmt.Sprintf("error-cmd: %s\nerror: %s\ndesc: %s\n\n", cmd, errType, desc))
}

func flag(b bool) string {
	if b {
		return "t"
	}
	return "f"
}
