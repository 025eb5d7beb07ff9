// Package engine resolves addressed fields against a document tree.
//
// A query is an address (["things"], ["a", "b", "c"]) and a shape. The
// engine walks the tree from the root toward the address with a
// cursor.Cursor and merges what it finds, broad to specific: a value in
// the root index document is a default that a.yml, a/index.yml, a/b.yml
// and so on may override.
//
// RESOLUTION PHASES:
//
// Collect walks the cursor chain for the requested shape and merges every
// level with ir.Merge. Absence is never an error here: a missing document
// or key reads as Null. Unreadable documents (parse errors, I/O failures)
// are skipped with a warning and remembered. Records resolve each declared
// field from its own sibling document once the cursor is complete; lists
// use an explicit sequence when the directory's index provides one, and
// otherwise turn every sibling document or directory into one element.
//
// Check validates the collected value against the shape. A required value
// that is still Null fails with DATA_NOT_FOUND (or with the read error
// that hid it), a scalar of the wrong kind fails with TYPE_MISMATCH,
// optional failures become Null and list elements that fail are dropped.
//
// NAME DERIVATION:
//
// Record fields marked with a derive directive are seeded with the list
// element's name: the file or directory stem for enumerated elements, or
// the key for elements of a keyed mapping. Seeds sit under the element's
// own data, so an explicit value always wins. A record with an identifier
// field may appear as a mapping where a list is expected; each key then
// names one element.
//
// CONCURRENCY:
//
// Every call builds its own cursor chain and values; nothing is cached or
// shared between calls. ResolveFields runs independent requests in
// parallel.
package engine
