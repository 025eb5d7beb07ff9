// Package cursor walks a document tree from the root toward an address.
//
// A Cursor alternates between two modes. In File mode it reads the
// document named after its path (a/b.yml); in Directory mode it reads the
// directory's index document (a/b/index.yml). Each read extracts the part
// of the document at the residual address, so for address [a b c] the
// cursor visits, broad to specific:
//
//	index.yml        at a.b.c
//	a.yml            at b.c
//	a/index.yml      at b.c
//	a/b.yml          at c
//	a/b/index.yml    at c
//	a/b/c.yml        whole document
//	a/b/c/index.yml  whole document
//
// Cursors are values. Advance returns a new Cursor and never mutates the
// receiver, so a cursor chain can be shared freely between goroutines.
package cursor
