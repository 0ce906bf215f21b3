package openapi

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// SourceKind enumerates the loader modalities.
type SourceKind string

const (
	SourceKindFile SourceKind = "file"
	SourceKindFS   SourceKind = "fs"
	SourceKindURL  SourceKind = "url"
)

// Source identifies where an OpenAPI document lives.
type Source struct {
	kind     SourceKind
	location string
}

// Kind reports the loader modality.
func (s Source) Kind() SourceKind {
	return s.kind
}

// Location is the path or URL.
func (s Source) Location() string {
	return s.location
}

// SourceFromFile points at a document on disk.
func SourceFromFile(path string) Source {
	return Source{kind: SourceKindFile, location: filepath.Clean(path)}
}

// SourceFromFS points at a document inside the loader's fs.FS.
func SourceFromFS(name string) Source {
	return Source{kind: SourceKindFS, location: name}
}

// SourceFromURL parses raw as an absolute http(s) URL.
func SourceFromURL(raw string) (Source, error) {
	if strings.TrimSpace(raw) == "" {
		return Source{}, fmt.Errorf("openapi: empty URL source")
	}
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return Source{}, fmt.Errorf("openapi: invalid URL %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return Source{}, fmt.Errorf("openapi: unsupported URL scheme %q", u.Scheme)
	}
	return Source{kind: SourceKindURL, location: raw}, nil
}

// ParseSource treats http(s) locations as URLs and anything else as a file
// path. It backs command-line flags.
func ParseSource(location string) (Source, error) {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return SourceFromURL(location)
	}
	if strings.TrimSpace(location) == "" {
		return Source{}, fmt.Errorf("openapi: empty source")
	}
	return SourceFromFile(location), nil
}
