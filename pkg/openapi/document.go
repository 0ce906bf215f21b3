package openapi

import "errors"

// Document wraps the raw OpenAPI payload and its origin.
type Document struct {
	source Source
	raw    []byte
}

// NewDocument copies raw and records its origin.
func NewDocument(src Source, raw []byte) (Document, error) {
	if len(raw) == 0 {
		return Document{}, errors.New("openapi: raw document is empty")
	}
	clone := append([]byte(nil), raw...)
	return Document{source: src, raw: clone}, nil
}

// Source returns the origin metadata for the document.
func (d Document) Source() Source {
	return d.source
}

// Raw returns a copy of the payload.
func (d Document) Raw() []byte {
	return append([]byte(nil), d.raw...)
}

// Location returns the string identifier for the origin.
func (d Document) Location() string {
	return d.source.Location()
}
