// Package io reads design and rules files and writes JSON results.
//
// Files are read as raw bytes; parsing belongs to [design.Parse] and
// [rule.Parse] so that the bytes can also be hashed for the cache. Read
// errors carry the codes of package errors:
//
//	data, err := io.ReadFile("home.json")
//	if errors.Is(err, errors.ErrCodeFileNotFound) {
//	    ...
//	}
//
// Results are written as indented JSON with [ExportJSON] or [WriteJSON].
// Both accept anything encoding/json accepts, including documents and rule
// stores, which marshal themselves.
//
// [design.Parse]: github.com/matzehuels/symbolkit/pkg/design.Parse
// [rule.Parse]: github.com/matzehuels/symbolkit/pkg/rule.Parse
package io
