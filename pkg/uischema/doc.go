// Package uischema loads auth screen definitions from JSON or YAML documents
// and turns them into model.FormModel values. The bundled sign-in and sign-up
// screens live under screens; callers can point LoadFS at their own
// directory to relabel fields, change messages or add links without touching
// controller code. Validator names are checked against package validation at
// load time so typos fail fast instead of silently disabling a rule.
package uischema
