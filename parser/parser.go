// Package parser decodes the TXT01 request format: values are pushed on a
// stack one per line until a command word consumes them.
//
//	TXT01
//	"org.kde.kate
//	resolve
package parser

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ValueType represents the type of a value on the stack
type ValueType int

const (
	TypeString ValueType = iota
	TypeInt
	TypeBool
)

func (t ValueType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeInt:
		return "int"
	case TypeBool:
		return "bool"
	}
	return fmt.Sprintf("ValueType(%d)", int(t))
}

// Value represents a value on the stack
type Value struct {
	Type ValueType
	Str  string
	Int  int64
	Bool bool
}

// Command represents a parsed command
type Command struct {
	Name string
	Args []Value
}

// Commands lists the command words understood by the server.
var Commands = []string{
	"desktop", // "id ["kind] -> path, icon, categories, ...
	"icon",    // "name size [scale] -> path
	"resolve", // "id -> desktop, icon-name, icon
	"theme",   // "name
	"+dir",    // "dir... adds extra data dirs
	"0dirs",   // clears extra data dirs
	"env",     // "KDE
	"lang",    // "de_DE
	"reindex", // ["id...]
	"list",
}

// Parser parses Forth-style commands
type Parser struct {
	reader  *bufio.Reader
	header  string
	version string
}

// NewParser creates a new parser
func NewParser(reader io.Reader) (*Parser, error) {
	p := &Parser{
		reader: bufio.NewReader(reader),
	}

	// Read header
	headerBytes := make([]byte, 5)
	if n, err := io.ReadFull(p.reader, headerBytes); err != nil || n != 5 {
		return nil, fmt.Errorf("invalid header")
	}

	p.header = string(headerBytes[:3])
	p.version = string(headerBytes[3:5])

	if p.header != "TXT" {
		return nil, fmt.Errorf("unsupported format: %s", p.header)
	}

	return p, nil
}

// Version returns the two-digit protocol version from the header.
func (p *Parser) Version() string {
	return p.version
}

// ParseCommand parses the next command from input
func (p *Parser) ParseCommand() (*Command, error) {
	stack := make([]Value, 0)

	for {
		line, err := p.reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, err
		}
		eof := err == io.EOF

		line = strings.TrimSpace(line)
		switch {
		case line == "" || strings.HasPrefix(line, "#"):
			// Skip empty lines and comments
		case isCommand(line):
			return &Command{Name: line, Args: stack}, nil
		default:
			value, err := parseValue(line)
			if err != nil {
				return nil, fmt.Errorf("parse error: %w", err)
			}
			stack = append(stack, value)
		}

		if eof {
			if len(stack) > 0 {
				return nil, fmt.Errorf("parse error: %d values without a command", len(stack))
			}
			return nil, io.EOF
		}
	}
}

func isCommand(line string) bool {
	for _, cmd := range Commands {
		if line == cmd {
			return true
		}
	}
	return false
}

func parseValue(line string) (Value, error) {
	// String value (prefixed with ")
	if str, ok := strings.CutPrefix(line, `"`); ok {
		return Value{Type: TypeString, Str: str}, nil
	}

	// Boolean literals (t/f)
	switch line {
	case "t":
		return Value{Type: TypeBool, Bool: true}, nil
	case "f":
		return Value{Type: TypeBool, Bool: false}, nil
	}

	if intVal, err := strconv.ParseInt(line, 10, 64); err == nil {
		return Value{Type: TypeInt, Int: intVal}, nil
	}

	return Value{}, fmt.Errorf("cannot parse value: %s", line)
}

// Strings returns the string arguments, failing on any other type.
func (c *Command) Strings() ([]string, error) {
	result := make([]string, 0, len(c.Args))
	for i, arg := range c.Args {
		if arg.Type != TypeString {
			return nil, fmt.Errorf("argument %d: expected string, got %s", i+1, arg.Type)
		}
		result = append(result, arg.Str)
	}
	return result, nil
}

// String returns argument i as a string.
func (c *Command) String(i int) (string, error) {
	if i >= len(c.Args) {
		return "", fmt.Errorf("missing argument %d", i+1)
	}
	if c.Args[i].Type != TypeString {
		return "", fmt.Errorf("argument %d: expected string, got %s", i+1, c.Args[i].Type)
	}
	return c.Args[i].Str, nil
}

// Int returns argument i as an integer.
func (c *Command) Int(i int) (int, error) {
	if i >= len(c.Args) {
		return 0, fmt.Errorf("missing argument %d", i+1)
	}
	if c.Args[i].Type != TypeInt {
		return 0, fmt.Errorf("argument %d: expected int, got %s", i+1, c.Args[i].Type)
	}
	return int(c.Args[i].Int), nil
}

// ReadAllCommands reads all commands from the parser
func (p *Parser) ReadAllCommands() ([]*Command, error) {
	var commands []*Command

	for {
		cmd, err := p.ParseCommand()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		commands = append(commands, cmd)
	}

	return commands, nil
}
