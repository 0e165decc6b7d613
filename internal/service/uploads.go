// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/olegiv/oblog/internal/imaging"
	"github.com/olegiv/oblog/internal/model"
	"github.com/olegiv/oblog/internal/util"
)

// Upload limits
const (
	MaxUploadSize    = 16 * 1024 * 1024 // 16MB
	DefaultUploadDir = "./uploads"
)

// UploadService stores featured images as flat files named
// "<unix_timestamp>_<sanitized_name>" in one directory.
type UploadService struct {
	dir       string
	processor *imaging.Processor
	now       func() time.Time
	logger    *slog.Logger
}

// NewUploadService creates an upload service writing into dir.
func NewUploadService(dir string, maxWidth int, logger *slog.Logger) *UploadService {
	if dir == "" {
		dir = DefaultUploadDir
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &UploadService{
		dir:       dir,
		processor: imaging.NewProcessor(maxWidth),
		now:       time.Now,
		logger:    logger,
	}
}

// Dir returns the upload directory.
func (s *UploadService) Dir() string {
	return s.dir
}

func uploadError(msg string) error {
	return &model.ValidationError{Fields: map[string]string{"featured_image": msg}}
}

// SaveFeaturedImage validates, normalizes and stores an uploaded image and
// returns its ref. Validation problems are reported as a ValidationError on
// the featured_image field.
func (s *UploadService) SaveFeaturedImage(r io.Reader, filename string, size int64) (string, error) {
	if size > MaxUploadSize {
		return "", uploadError(fmt.Sprintf("File must be at most %d MB", MaxUploadSize/(1024*1024)))
	}

	name := util.SecureFilename(filename)
	ext := strings.ToLower(filepath.Ext(name))
	if _, ok := model.AllowedImageExtensions[ext]; !ok || name == ext {
		return "", uploadError("Only jpg, jpeg, png and gif images are allowed")
	}

	res, err := s.processor.Process(io.LimitReader(r, MaxUploadSize+1))
	if errors.Is(err, imaging.ErrUnsupportedFormat) {
		return "", uploadError("File is not a valid image")
	}
	if err != nil {
		return "", uploadError("File could not be processed as an image")
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating upload dir: %w", err)
	}

	ref, err := s.write(name, res.Data)
	if err != nil {
		return "", err
	}

	s.logger.Info("featured image stored", "ref", ref, "width", res.Width, "height", res.Height)
	return ref, nil
}

// write creates the file without overwriting an existing one, moving the
// timestamp forward on a name clash.
func (s *UploadService) write(name string, data []byte) (string, error) {
	ts := s.now().Unix()
	for range 10 {
		ref := strconv.FormatInt(ts, 10) + "_" + name
		path, err := util.SafeJoinPath(s.dir, ref)
		if err != nil {
			return "", err
		}

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, os.ErrExist) {
			ts++
			continue
		}
		if err != nil {
			return "", fmt.Errorf("creating upload: %w", err)
		}

		if _, err := f.Write(data); err != nil {
			_ = f.Close()
			_ = os.Remove(path)
			return "", fmt.Errorf("writing upload: %w", err)
		}
		if err := f.Close(); err != nil {
			_ = os.Remove(path)
			return "", fmt.Errorf("closing upload: %w", err)
		}
		return ref, nil
	}
	return "", fmt.Errorf("no free upload name for %q", name)
}

// Path resolves a ref to a file path inside the upload directory.
func (s *UploadService) Path(ref string) (string, error) {
	name, err := util.SanitizeFilename(ref)
	if err != nil || name != ref {
		return "", fmt.Errorf("invalid upload ref %q", ref)
	}
	return util.SafeJoinPath(s.dir, name)
}

// Remove deletes a stored file. A file that is already gone is not an error.
func (s *UploadService) Remove(ref string) error {
	path, err := s.Path(ref)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
