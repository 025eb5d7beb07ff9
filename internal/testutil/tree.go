package testutil

import (
	"os"
	"path"
	"strings"
	"testing"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/helper/chroot"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
)

// Tree builds a document tree for tests.
//
// Example:
//
//	tree := testutil.NewMemTree(t).
//		File("things/widget.yml", "size: 1.1").
//		File("things/dongle.yml", "size: 2.2")
//	eng := engine.New(tree.FS())
type Tree struct {
	t  testing.TB
	fs billy.Filesystem
}

// NewMemTree creates an empty in-memory tree.
// The tree is rooted at a real directory inside the memory filesystem so
// that the root itself can be listed.
func NewMemTree(t testing.TB) *Tree {
	t.Helper()
	mem := memfs.New()
	if err := mem.MkdirAll("/tree", 0o755); err != nil {
		t.Fatalf("create memory tree: %v", err)
	}
	return &Tree{t: t, fs: chroot.New(mem, "/tree")}
}

// NewDirTree creates an empty tree in a temporary directory on disk and
// returns it with the directory path.
func NewDirTree(t testing.TB) (*Tree, string) {
	t.Helper()
	dir := t.TempDir()
	return &Tree{t: t, fs: osfs.New(dir)}, dir
}

// FS returns the tree's filesystem.
func (tr *Tree) FS() billy.Filesystem {
	return tr.fs
}

// File writes content (dedented) to name, creating parent directories.
func (tr *Tree) File(name, content string) *Tree {
	tr.t.Helper()
	if dir := path.Dir(name); dir != "." {
		tr.Dir(dir)
	}
	if err := util.WriteFile(tr.fs, name, []byte(Dedent(content)), 0o644); err != nil {
		tr.t.Fatalf("write %s: %v", name, err)
	}
	return tr
}

// Dir creates a directory and its parents.
func (tr *Tree) Dir(name string) *Tree {
	tr.t.Helper()
	if err := tr.fs.MkdirAll(name, os.ModeDir|0o755); err != nil {
		tr.t.Fatalf("mkdir %s: %v", name, err)
	}
	return tr
}

// Files writes every entry of files. Map iteration order does not matter
// because each file is independent.
func (tr *Tree) Files(files map[string]string) *Tree {
	tr.t.Helper()
	for name, content := range files {
		tr.File(name, content)
	}
	return tr
}

// Dedent removes the common leading whitespace of all non-blank lines and
// a single leading newline, so documents can be written as indented raw
// strings in tests.
func Dedent(s string) string {
	s = strings.TrimPrefix(s, "\n")
	lines := strings.Split(s, "\n")

	prefix, found := "", false
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
		if !found {
			prefix, found = indent, true
			continue
		}
		for !strings.HasPrefix(indent, prefix) {
			prefix = prefix[:len(prefix)-1]
		}
	}

	if prefix == "" {
		return s
	}
	for i, line := range lines {
		lines[i] = strings.TrimPrefix(line, prefix)
	}
	return strings.Join(lines, "\n")
}
