// Package document loads structured documents from a filesystem into
// ir.Values.
//
// A Loader is bound to a billy.Filesystem and a Layout. The Layout names
// the index document ("index") and the extensions tried, in order, when a
// document stem is loaded. Each extension maps to a Codec; YAML, JSON and
// HCL codecs are registered by default.
//
// The loader is read-only and holds no cache: every Load goes to the
// filesystem.
package document
