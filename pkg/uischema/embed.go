package uischema

import (
	"embed"
	"io/fs"
)

//go:embed screens/*.yaml
var screens embed.FS

// EmbeddedFS returns the built-in sign-in and sign-up definitions, rooted so
// LoadFS or an overlay merge can walk it directly.
func EmbeddedFS() fs.FS {
	root, err := fs.Sub(screens, "screens")
	if err != nil {
		panic(err)
	}
	return root
}

// Default parses the built-in screens into a fresh Store, so callers may
// merge into the result.
func Default() (*Store, error) {
	return LoadFS(EmbeddedFS())
}

// MustDefault is Default for package-level wiring. It panics only if the
// bundled YAML is broken.
func MustDefault() *Store {
	store, err := Default()
	if err != nil {
		panic(err)
	}
	return store
}
