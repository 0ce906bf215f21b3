package render_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-authform/pkg/render"
)

func TestSanitizeText(t *testing.T) {
	cases := []struct{ in, want string }{
		{"", ""},
		{"  plain  ", "plain"},
		{"<b>Bold</b> move", "Bold move"},
		{`<img src=x onerror="alert(1)">Hi`, "Hi"},
		{"Tom & Jerry", "Tom & Jerry"},
		{"<script>alert(1)</script>", ""},
		{"Invalid email or password. Please try again.", "Invalid email or password. Please try again."},
	}
	for _, tc := range cases {
		if got := render.SanitizeText(tc.in); got != tc.want {
			t.Fatalf("SanitizeText(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSanitizeTexts(t *testing.T) {
	got := render.SanitizeTexts([]string{"<i>a</i>", "<script>x</script>", " b "})
	if diff := cmp.Diff([]string{"a", "b"}, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestSanitizeIcon(t *testing.T) {
	raw := `<svg viewBox="0 0 24 24" onload="x()"><line x1="18" y1="6" x2="6" y2="18"></line><script>bad()</script></svg>`
	got := render.SanitizeIcon(raw)
	if strings.Contains(got, "onload") || strings.Contains(got, "script") {
		t.Fatalf("unsafe markup survived: %s", got)
	}
	if !strings.Contains(got, `<line x1="18" y1="6" x2="6" y2="18">`) {
		t.Fatalf("expected line element kept, got %s", got)
	}
}
