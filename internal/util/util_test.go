// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecureFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"photo.jpg", "photo.jpg"},
		{"My Holiday Photo.JPG", "My_Holiday_Photo.JPG"},
		{"../../etc/passwd", "passwd"},
		{"C:\\Users\\me\\cat.png", "cat.png"},
		{"café déjà vu.png", "cafe_deja_vu.png"},
		{".hidden.gif", "hidden.gif"},
		{"__init__.png", "init__.png"},
		{"a<b>c?.jpeg", "abc.jpeg"},
		{"", ""},
		{"..", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SecureFilename(tt.in))
		})
	}
}

func TestSanitizeFilename(t *testing.T) {
	got, err := SanitizeFilename("../../secret.txt")
	require.NoError(t, err)
	assert.Equal(t, "secret.txt", got)

	for _, bad := range []string{"", ".", ".."} {
		_, err := SanitizeFilename(bad)
		assert.Error(t, err, bad)
	}
}

func TestSafeJoinPath(t *testing.T) {
	base := t.TempDir()

	p, err := SafeJoinPath(base, "blog", "1_a.jpg")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "blog", "1_a.jpg"), p)

	_, err = SafeJoinPath(base, "..", "escape")
	assert.Error(t, err)

	_, err = SafeJoinPath(base, "../"+filepath.Base(base)+"-evil/x")
	assert.Error(t, err)
}

func TestParsePositiveID(t *testing.T) {
	id, ok := ParsePositiveID("42")
	assert.True(t, ok)
	assert.Equal(t, int64(42), id)

	for _, bad := range []string{"", "0", "-1", "abc", "1.5", "99999999999999999999"} {
		_, ok := ParsePositiveID(bad)
		assert.False(t, ok, bad)
	}
}

func TestNullHelpers(t *testing.T) {
	assert.False(t, NullStringFromValue("").Valid)
	assert.True(t, NullStringFromValue("x").Valid)
	assert.Equal(t, int64(7), NullInt64FromValue(7).Int64)
}
