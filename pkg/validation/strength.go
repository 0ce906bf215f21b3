package validation

// Tier is a coarse password quality rating. Tiers are ordered so callers can
// compare them directly.
type Tier int

const (
	TierNone Tier = iota
	TierWeak
	TierFair
	TierGood
	TierStrong
)

// String returns the tier identifier used in CSS classes and JSON.
func (t Tier) String() string {
	switch t {
	case TierWeak:
		return "weak"
	case TierFair:
		return "fair"
	case TierGood:
		return "good"
	case TierStrong:
		return "strong"
	default:
		return ""
	}
}

// Label is the text shown next to the strength meter.
func (t Tier) Label() string {
	switch t {
	case TierWeak:
		return "Weak password"
	case TierFair:
		return "Fair password"
	case TierGood:
		return "Good password"
	case TierStrong:
		return "Strong password"
	default:
		return "Password strength"
	}
}

// MarshalText encodes the tier as its identifier.
func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// TierFromCount maps a PasswordChecks count to a tier.
func TierFromCount(count int) Tier {
	switch {
	case count <= 2:
		return TierWeak
	case count == 3:
		return TierFair
	case count == 4:
		return TierGood
	default:
		return TierStrong
	}
}

// ScoreStrength rates a password. The empty password has no tier. The score
// is informational; submission is gated by PasswordRulesRequired instead.
func ScoreStrength(password string) Tier {
	if password == "" {
		return TierNone
	}
	return TierFromCount(CheckPasswordRules(password).Count())
}
