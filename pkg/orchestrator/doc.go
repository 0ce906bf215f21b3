// Package orchestrator wires form sources (embedded definitions, overlay
// directories, OpenAPI documents) to the renderer registry and theme, giving
// the CLI and embedding applications a single entry point.
package orchestrator
