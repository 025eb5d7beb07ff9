package cursor

import (
	"fmt"
	"strings"

	"github.com/roach88/confql/internal/document"
	"github.com/roach88/confql/internal/ir"
)

// Mode is the cursor's reading phase.
type Mode int

const (
	// File reads <path>.<ext>.
	File Mode = iota + 1

	// Directory reads <path>/<index>.<ext>.
	Directory
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case File:
		return "file"
	case Directory:
		return "directory"
	default:
		return "none"
	}
}

// Cursor is a position in the document tree: a base path, the part of the
// address not yet consumed, and a mode.
//
// The zero Cursor is empty; reading from it returns EMPTY_CURSOR_ACCESS.
type Cursor struct {
	loader  *document.Loader
	path    string
	address []string
	mode    Mode
}

// New returns a Directory-mode cursor at root with the full address.
// The empty root is the top of the loader's filesystem.
func New(loader *document.Loader, root string, address []string) Cursor {
	return Cursor{
		loader:  loader,
		path:    root,
		address: append([]string(nil), address...),
		mode:    Directory,
	}
}

// IsZero reports whether c is the empty cursor.
func (c Cursor) IsZero() bool {
	return c.loader == nil
}

// Path returns the base path.
func (c Cursor) Path() string {
	return c.path
}

// Address returns a copy of the residual address.
func (c Cursor) Address() []string {
	return append([]string(nil), c.address...)
}

// Mode returns the reading phase.
func (c Cursor) Mode() Mode {
	return c.mode
}

// Name returns the last element of the base path, or "" at the root.
func (c Cursor) Name() string {
	if c.path == "" {
		return ""
	}
	i := strings.LastIndexAny(c.path, `/\`)
	return c.path[i+1:]
}

// IsComplete reports whether no further descent is possible: the cursor
// is in Directory mode with nothing left to consume.
func (c Cursor) IsComplete() bool {
	return c.mode == Directory && len(c.address) == 0
}

// Advance returns the next, more specific cursor.
//
// From File mode the cursor re-enters the same path as a directory, or
// reports a dead end when the path is not a directory. From Directory
// mode it consumes the head of the address. A complete cursor cannot
// advance.
func (c Cursor) Advance() (Cursor, bool) {
	if c.IsZero() {
		return Cursor{}, false
	}
	switch c.mode {
	case File:
		if !c.loader.IsDir(c.path) {
			return Cursor{}, false
		}
		c.mode = Directory
		return c, true
	case Directory:
		if len(c.address) == 0 {
			return Cursor{}, false
		}
		c.path = c.join(c.address[0])
		c.address = c.address[1:]
		c.mode = File
		return c, true
	}
	return Cursor{}, false
}

// Join returns a File-mode cursor at path/name with the same residual
// address.
func (c Cursor) Join(name string) Cursor {
	if c.IsZero() {
		return Cursor{}
	}
	c.path = c.join(name)
	c.mode = File
	return c
}

// Element returns a File-mode cursor at path/name with an empty address,
// the starting point for resolving one list element.
func (c Cursor) Element(name string) Cursor {
	e := c.Join(name)
	e.address = nil
	return e
}

// Document returns the stem of the document this cursor reads.
func (c Cursor) Document() string {
	if c.mode == Directory {
		return c.join(c.loader.Layout().IndexName)
	}
	return c.path
}

// ReadHere loads the document visible at this position and extracts the
// value at the residual address.
//
// Errors are returned as is: IO_ERROR (ir.IsNotFound when the document
// does not exist), PARSE_ERROR, or KEY_NOT_FOUND from extraction.
// Callers decide which of them mean "no data here".
func (c Cursor) ReadHere() (ir.Value, error) {
	if c.IsZero() {
		return nil, ir.NewEmptyCursorError()
	}
	doc, err := c.loader.LoadStem(c.Document())
	if err != nil {
		return nil, err
	}
	return ir.Extract(doc, c.address)
}

// Siblings lists the element names under the base path: one per document
// or subdirectory, index excluded. A path that is not a readable
// directory has no siblings.
func (c Cursor) Siblings() ([]string, error) {
	if c.IsZero() {
		return nil, ir.NewEmptyCursorError()
	}
	return c.loader.Elements(c.path), nil
}

// String renders the cursor for logs, e.g. "file:a/b [c]".
func (c Cursor) String() string {
	if c.IsZero() {
		return "<empty>"
	}
	p := c.path
	if p == "" {
		p = "."
	}
	return fmt.Sprintf("%s:%s [%s]", c.mode, p, strings.Join(c.address, " "))
}

func (c Cursor) join(name string) string {
	if c.path == "" {
		return name
	}
	return c.loader.Join(c.path, name)
}
