package tui

import "io"

// Theme captures optional prefixes the session applies when printing
// messages. Keep minimal to avoid coupling session logic to ANSI specifics.
type Theme struct {
	InfoPrefix    string
	SuccessPrefix string
	ErrorPrefix   string
}

// DefaultTheme marks outcomes with plain glyphs.
func DefaultTheme() Theme {
	return Theme{
		InfoPrefix:    "  ",
		SuccessPrefix: "✓ ",
		ErrorPrefix:   "✗ ",
	}
}

// DefaultMaxAttempts bounds how often Run re-prompts after a failed submit.
const DefaultMaxAttempts = 3

// Option configures a Session.
type Option func(*Session)

// WithPromptDriver overrides the prompt driver used by the session.
func WithPromptDriver(driver PromptDriver) Option {
	return func(s *Session) {
		if driver != nil {
			s.driver = driver
		}
	}
}

// WithOutput directs the default survey driver's info lines to w.
func WithOutput(w io.Writer) Option {
	return func(s *Session) {
		s.out = w
	}
}

// WithTheme applies message prefixes.
func WithTheme(theme Theme) Option {
	return func(s *Session) {
		s.theme = theme
	}
}

// WithMaxAttempts sets how many submit attempts Run makes before giving up.
func WithMaxAttempts(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}
