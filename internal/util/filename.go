// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/unicode/norm"
)

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SecureFilename turns an uploaded file name into a plain ASCII name that
// is safe to store on disk. Directory components are dropped, non-ASCII
// letters are transliterated, whitespace becomes "_" and everything outside
// [A-Za-z0-9._-] is removed. Leading dots and underscores are trimmed, so
// the result is never hidden. An empty string means nothing usable was left.
func SecureFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(filepath.ToSlash(name))
	if name == "." || name == "/" {
		return ""
	}

	name = unidecode.Unidecode(norm.NFC.String(name))
	name = strings.Join(strings.Fields(name), "_")
	name = unsafeFilenameChars.ReplaceAllString(name, "")
	return strings.TrimLeft(name, "._")
}
