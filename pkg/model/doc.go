// Package model defines the typed form definitions consumed by controllers
// and renderers. A FormModel describes one authentication screen (sign-in or
// sign-up): its fields in display order, the roles those fields play, the
// validator and message attached to each, and the timing constants for live
// validation, submission and the post-success redirect. Definitions are
// usually loaded from the embedded ui schema (see package uischema) or
// derived from an OpenAPI description (see package openapi); the zero value
// of every timing field falls back to the defaults declared here.
package model
