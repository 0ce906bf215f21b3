package render

// RenderOptions carry per-request data that does not live in the controller
// snapshot.
type RenderOptions struct {
	// Action overrides the form endpoint used as the HTML form action.
	Action string
	// Hidden fields are emitted alongside the visible inputs (CSRF tokens,
	// return targets).
	Hidden []HiddenField
	// FormErrors are form-level messages shown above the inputs, typically
	// from a rejected submission.
	FormErrors []string
	// Palette carries resolved theme tokens. The zero value falls back to
	// DefaultTokens.
	Palette Palette
	// EchoSecrets writes secret values back into the inputs. Servers set it
	// when re-rendering after a visibility toggle so the typed password
	// survives the round trip.
	EchoSecrets bool
}
