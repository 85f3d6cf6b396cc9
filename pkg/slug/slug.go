// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package slug generates ASCII URL slugs from arbitrary Unicode strings.
//
// Category slugs ("science-fiction") are derived from the display name so
// clients can link to /categories?slug=... without exposing numeric ids.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// separators collapses every run of non [a-z0-9] characters into one hyphen.
var separators = regexp.MustCompile(`[^a-z0-9]+`)

// From converts an arbitrary Unicode string into a URL-safe ASCII slug.
//
// # Pipeline
//
// NFD decomposition, removal of combining marks, lower-casing, then
// replacement of separator runs with a single hyphen.
func From(s string) string {
	stripMarks := transform.Chain(norm.NFD, transform.RemoveFunc(isMark))
	result, _, err := transform.String(stripMarks, s)
	if err != nil {
		result = s
	}

	result = separators.ReplaceAllString(strings.ToLower(result), "-")
	return strings.Trim(result, "-")
}

func isMark(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}
