// Package xdg is the client side of the ade-xdgd socket protocol.
package xdg

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"sync"
)

const protoVer = "TXT01" // command stack protocol, text format, v01

// Response is one server reply: "key: value" attributes and, for list,
// the body lines.
type Response struct {
	Attrs map[string]string `json:"attrs" yaml:"attrs"`
	Body  []string          `json:"body,omitempty" yaml:"body,omitempty"`
}

// ServerError is a reply carrying error-cmd, error and desc attributes.
type ServerError struct {
	Cmd  string
	Type string
	Desc string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Cmd, e.Type, e.Desc)
}

// NotFound reports whether the server could not find the resource.
func (e *ServerError) NotFound() bool {
	return e.Type == "not found"
}

// Entry is one line of a list reply.
type Entry struct {
	ID       string
	IconPath string // empty when unresolved
	Name     string
}

// Client handles connection to ade-xdgd
type Client struct {
	conn   net.Conn
	reader *bufio.Reader
	mu     sync.Mutex
	socket string
}

// NewClient connects to the socket from SocketPath.
func NewClient() (*Client, error) {
	socketPath, err := SocketPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get socket path: %w", err)
	}
	return Dial(socketPath)
}

// Dial connects to the server at socketPath.
func Dial(socketPath string) (*Client, error) {
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to socket %s: %w", socketPath, err)
	}

	c, err := NewClientConn(conn)
	if err != nil {
		conn.Close()
		return nil, err
	}
	c.socket = socketPath
	return c, nil
}

// NewClientConn speaks the protocol over an established connection.
func NewClientConn(conn net.Conn) (*Client, error) {
	// Send header
	if _, err := conn.Write([]byte(protoVer + "\n")); err != nil {
		return nil, fmt.Errorf("failed to send header: %w", err)
	}
	return &Client{
		conn:   conn,
		reader: bufio.NewReader(conn),
	}, nil
}

// Close closes the connection
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// FormatArgument formats a raw command line argument for the stack: ints
// and t/f are passed as is, everything else becomes a string.
func FormatArgument(arg string) string {
	arg = strings.TrimSpace(arg)

	// If starts with ", it's a string (keep prefix)
	if strings.HasPrefix(arg, `"`) {
		return arg
	}

	if arg == "t" || arg == "f" {
		return arg
	}

	if _, err := strconv.ParseInt(arg, 10, 64); err == nil {
		return arg
	}

	return `"` + arg
}

// SendCommand sends a command with raw arguments, see FormatArgument
func (c *Client) SendCommand(cmdName string, args []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.send(cmdName, args)
}

func (c *Client) send(cmdName string, args []string) error {
	var b strings.Builder
	for _, arg := range args {
		b.WriteString(FormatArgument(arg))
		b.WriteByte('\n')
	}
	b.WriteString(cmdName)
	b.WriteByte('\n')

	if _, err := io.WriteString(c.conn, b.String()); err != nil {
		return fmt.Errorf("failed to send command: %w", err)
	}
	return nil
}

// ReadResponse reads the reply to the last command
func (c *Client) ReadResponse() (*Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.readResponse()
}

// Call sends a command and reads its reply. Error replies are returned as
// *ServerError.
func (c *Client) Call(cmdName string, args ...string) (*Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.send(cmdName, args); err != nil {
		return nil, err
	}
	resp, err := c.readResponse()
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if errType, ok := resp.Attrs["error"]; ok {
		return resp, &ServerError{Cmd: resp.Attrs["error-cmd"], Type: errType, Desc: resp.Attrs["desc"]}
	}
	return resp, nil
}

func (c *Client) readResponse() (*Response, error) {
	header := make([]byte, len(protoVer))
	if _, err := io.ReadFull(c.reader, header); err != nil {
		return nil, fmt.Errorf("failed to read response header: %w", err)
	}
	if string(header) != protoVer {
		return nil, fmt.Errorf("unexpected response header %q", header)
	}

	resp := &Response{Attrs: make(map[string]string)}
	inBody := false
	for {
		line, err := c.reader.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("read error: %w", err)
		}
		line = strings.TrimSuffix(line, "\n")

		// A blank line ends the response
		if line == "" {
			return resp, nil
		}
		if inBody {
			resp.Body = append(resp.Body, line)
			continue
		}
		if line == "body:" {
			inBody = true
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if ok {
			resp.Attrs[strings.TrimSpace(key)] = strings.TrimSpace(value)
		}
	}
}

// Desktop returns the attributes of the desktop entry id. kind is
// "applications" or "desktop-directories"; empty means applications.
func (c *Client) Desktop(id, kind string) (map[string]string, error) {
	args := []string{`"` + id}
	if kind != "" {
		args = append(args, `"`+kind)
	}
	resp, err := c.Call("desktop", args...)
	if err != nil {
		return nil, err
	}
	return resp.Attrs, nil
}

// Icon resolves an icon name to a file path.
func (c *Client) Icon(name string, size, scale int) (string, error) {
	resp, err := c.Call("icon", `"`+name, strconv.Itoa(size), strconv.Itoa(scale))
	if err != nil {
		return "", err
	}
	return resp.Attrs["path"], nil
}

// Resolve finds the desktop file of id and its icon. The icon path is
// empty when only the icon could not be found.
func (c *Client) Resolve(id string) (desktopPath, iconPath string, err error) {
	resp, err := c.Call("resolve", `"`+id)
	if err != nil {
		return "", "", err
	}
	return resp.Attrs["desktop"], resp.Attrs["icon"], nil
}

// SetTheme selects the icon theme for this connection and reports whether
// the theme exists.
func (c *Client) SetTheme(name string) (bool, error) {
	resp, err := c.Call("theme", `"`+name)
	if err != nil {
		return false, err
	}
	return resp.Attrs["valid"] == "t", nil
}

// AddDirs adds extra data directories for this connection.
func (c *Client) AddDirs(dirs ...string) error {
	args := make([]string, len(dirs))
	for i, dir := range dirs {
		args[i] = `"` + dir
	}
	_, err := c.Call("+dir", args...)
	return err
}

// ResetDirs drops the connection's extra data directories.
func (c *Client) ResetDirs() error {
	_, err := c.Call("0dirs")
	return err
}

// SetEnv sets the desktop environment name used for OnlyShowIn/NotShowIn.
func (c *Client) SetEnv(name string) error {
	_, err := c.Call("env", `"`+name)
	return err
}

// SetLang sets the locale used for names.
func (c *Client) SetLang(lang string) error {
	_, err := c.Call("lang", `"`+lang)
	return err
}

// Reindex asks the server to rebuild its index, for ids or everything.
// It returns the number of indexed and failed entries.
func (c *Client) Reindex(ids ...string) (indexed, failed int, err error) {
	args := make([]string, len(ids))
	for i, id := range ids {
		args[i] = `"` + id
	}
	resp, err := c.Call("reindex", args...)
	if err != nil {
		return 0, 0, err
	}
	indexed, _ = strconv.Atoi(resp.Attrs["indexed"])
	failed, _ = strconv.Atoi(resp.Attrs["failed"])
	return indexed, failed, nil
}

// List returns the server's index
func (c *Client) List() ([]Entry, error) {
	resp, err := c.Call("list")
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(resp.Body))
	for _, line := range resp.Body {
		parts := strings.SplitN(line, " ", 3)
		if len(parts) < 3 {
			continue
		}
		entry := Entry{ID: parts[0], IconPath: parts[1], Name: parts[2]}
		if entry.IconPath == "-" {
			entry.IconPath = ""
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
