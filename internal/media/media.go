// Locrelay - Real-time Location and Event Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locrelay

// Package media stores uploaded event images and returns the reference
// clients use to fetch them.
//
// Two backends exist: a local directory served back under /uploads, and
// an S3-compatible bucket. Stored names have the form
// <unix-millis>-<8 hex><ext>, so two uploads in the same millisecond do
// not collide.
package media

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/locrelay/internal/config"
)

// URLPrefix is the path local uploads are served from.
const URLPrefix = "/uploads/"

// Store persists one media object.
type Store interface {
	// Save writes size bytes from r under name and returns the public
	// reference for the stored object.
	Save(ctx context.Context, name, contentType string, r io.Reader, size int64) (string, error)
	// Delete removes a stored object. A missing object is not an error.
	Delete(ctx context.Context, name string) error
	Backend() string
}

// Open builds the backend selected by cfg. publicBaseURL prefixes local
// references; it may be empty for host-relative paths.
func Open(cfg *config.MediaConfig, publicBaseURL string) (Store, error) {
	switch cfg.Backend {
	case "", "local":
		return NewLocal(cfg.Dir, publicBaseURL)
	case "s3":
		return NewS3(&cfg.S3)
	default:
		return nil, fmt.Errorf("unknown media backend %q", cfg.Backend)
	}
}

// NewName returns a fresh stored name keeping the extension of original.
func NewName(original string, now time.Time) string {
	return strconv.FormatInt(now.UnixMilli(), 10) + "-" + uuid.NewString()[:8] + cleanExt(original)
}

// cleanExt returns the lower-cased extension of name if it is short and
// alphanumeric, otherwise "".
func cleanExt(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if len(ext) < 2 || len(ext) > 10 {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}

// validName reports whether name is a single path element that NewName
// could have produced.
func validName(name string) bool {
	return name != "" && name == filepath.Base(name) && !strings.HasPrefix(name, ".") && !strings.ContainsAny(name, `/\`)
}
