package vanilla

// ChromeClass is a typed identifier for semantic chrome CSS classes.
type ChromeClass string

const (
	ClassPage         ChromeClass = "authform-page"
	ClassCard         ChromeClass = "authform-card"
	ClassHeader       ChromeClass = "authform-header"
	ClassForm         ChromeClass = "authform-form"
	ClassField        ChromeClass = "authform-field"
	ClassLabel        ChromeClass = "authform-label"
	ClassControl      ChromeClass = "authform-control"
	ClassCheckbox     ChromeClass = "authform-checkbox"
	ClassToggle       ChromeClass = "authform-toggle"
	ClassMessage      ChromeClass = "authform-message"
	ClassStrength     ChromeClass = "authform-strength"
	ClassStrengthBar  ChromeClass = "authform-strength-bar"
	ClassStrengthText ChromeClass = "authform-strength-text"
	ClassActions      ChromeClass = "authform-actions"
	ClassDefault      ChromeClass = "authform-default"
	ClassErrors       ChromeClass = "authform-errors"
	ClassNotification ChromeClass = "authform-notification"
	ClassLinks        ChromeClass = "authform-links"
	ClassAlternate    ChromeClass = "authform-alternate"
)

// chromeClasses is exposed to templates as "classes".
func chromeClasses() map[string]string {
	return map[string]string{
		"page":         string(ClassPage),
		"card":         string(ClassCard),
		"header":       string(ClassHeader),
		"form":         string(ClassForm),
		"field":        string(ClassField),
		"label":        string(ClassLabel),
		"control":      string(ClassControl),
		"checkbox":     string(ClassCheckbox),
		"toggle":       string(ClassToggle),
		"message":      string(ClassMessage),
		"strength":     string(ClassStrength),
		"strengthBar":  string(ClassStrengthBar),
		"strengthText": string(ClassStrengthText),
		"actions":      string(ClassActions),
		"default":      string(ClassDefault),
		"errors":       string(ClassErrors),
		"notification": string(ClassNotification),
		"links":        string(ClassLinks),
		"alternate":    string(ClassAlternate),
	}
}
