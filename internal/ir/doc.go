// Package ir provides the document value model for confql.
//
// Every document the loader reads, whatever its syntax, is converted into a
// Value before the engine sees it. The engine only ever merges, extracts and
// checks Values; it never looks at YAML, JSON or HCL directly.
//
// This package contains the value types, the merge rules, sub-value
// extraction and the error taxonomy. All other internal packages import ir;
// ir imports nothing internal.
//
// Key design constraints:
//   - Null is absence: merging Null never overrides anything
//   - Merge is total over every Value pairing and deterministic
//   - Values returned from Merge never alias the src operand
//   - Canonical JSON sorts keys by UTF-16 code units and NFC-normalises strings
package ir
