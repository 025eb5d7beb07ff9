package document

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"syscall"

	billy "github.com/go-git/go-billy/v5"

	"github.com/roach88/confql/internal/ir"
)

// Loader reads documents from a billy.Filesystem.
//
// Paths are filesystem-relative; the empty path is the filesystem root.
// All errors returned are *ir.Error with code IO_ERROR or PARSE_ERROR.
// A missing document is an IO_ERROR wrapping fs.ErrNotExist, so callers
// can tell absence from failure with ir.IsNotFound.
type Loader struct {
	fs     billy.Filesystem
	layout Layout
	codecs Registry
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithCodec registers (or replaces) the codec for an extension.
func WithCodec(ext string, c Codec) LoaderOption {
	return func(l *Loader) {
		l.codecs[strings.ToLower(strings.TrimPrefix(ext, "."))] = c
	}
}

// NewLoader creates a Loader over fsys. The layout is normalized, so a
// zero Layout means DefaultLayout().
func NewLoader(fsys billy.Filesystem, layout Layout, opts ...LoaderOption) *Loader {
	l := &Loader{
		fs:     fsys,
		layout: layout.Normalize(),
		codecs: DefaultRegistry(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Layout returns the normalized layout.
func (l *Loader) Layout() Layout {
	return l.layout
}

// Validate checks that every layout extension has a codec.
func (l *Loader) Validate() error {
	return l.layout.Validate(l.codecs)
}

// Join joins path elements using the filesystem's separator rules.
func (l *Loader) Join(elem ...string) string {
	return l.fs.Join(elem...)
}

// Load reads and decodes the document at name, choosing the codec by
// extension. Empty or whitespace-only documents decode to Null.
func (l *Loader) Load(name string) (ir.Value, error) {
	ext := path.Ext(name)
	codec, ok := l.codecs.Lookup(ext)
	if !ok {
		return nil, ir.NewParseError(name, fmt.Errorf("no codec for extension %q", ext))
	}

	f, err := l.fs.Open(name)
	if err != nil {
		return nil, ir.NewIOError(name, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, ir.NewIOError(name, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return ir.Null{}, nil
	}

	v, err := codec.Decode(data)
	if err != nil {
		return nil, ir.NewParseError(name, err)
	}
	return ir.OrNull(v), nil
}

// LoadStem loads stem.<ext> for the first layout extension whose
// document exists.
func (l *Loader) LoadStem(stem string) (ir.Value, error) {
	for _, ext := range l.layout.Extensions {
		name := stem + "." + ext
		info, err := l.fs.Stat(name)
		if err != nil {
			if isAbsent(err) {
				continue
			}
			return nil, ir.NewIOError(name, err)
		}
		if info.IsDir() {
			continue
		}
		return l.Load(name)
	}
	return nil, ir.NewIOError(stem, fmt.Errorf("no %s document: %w",
		strings.Join(l.layout.Extensions, "|"), fs.ErrNotExist))
}

// IsDir reports whether p exists and is a directory.
func (l *Loader) IsDir(p string) bool {
	info, err := l.fs.Stat(p)
	return err == nil && info.IsDir()
}

// Elements lists the element names directly under dir.
//
// A file <name>.<ext> with a layout extension and a directory <name> are
// the same element. Hidden entries, files with other extensions and the
// index document are skipped. Names are returned sorted. An unreadable or
// missing directory has no elements.
func (l *Loader) Elements(dir string) []string {
	infos, err := l.fs.ReadDir(dir)
	if err != nil {
		return nil
	}

	seen := make(map[string]struct{}, len(infos))
	names := make([]string, 0, len(infos))
	for _, info := range infos {
		name := info.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		isDir := info.IsDir()
		if info.Mode()&os.ModeSymlink != 0 {
			isDir = l.IsDir(l.fs.Join(dir, name))
		}

		stem := name
		if !isDir {
			ext := path.Ext(name)
			if ext == "" || !l.layout.HasExtension(ext[1:]) {
				continue
			}
			stem = strings.TrimSuffix(name, ext)
		}
		if stem == "" || stem == l.layout.IndexName {
			continue
		}
		if _, dup := seen[stem]; dup {
			continue
		}
		seen[stem] = struct{}{}
		names = append(names, stem)
	}

	sort.Strings(names)
	return names
}

// isAbsent treats a missing file, or a path through a non-directory, as absence.
func isAbsent(err error) bool {
	return errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR)
}
