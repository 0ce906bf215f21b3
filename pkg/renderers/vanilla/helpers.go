package vanilla

import (
	"strings"

	"github.com/goliatone/go-authform/pkg/render"
)

// ToggleFieldName is the submit button name used by the password
// visibility toggle. Its value is the field to toggle.
const ToggleFieldName = "_toggle"

// AlternateFieldName is the submit button name of the placeholder OAuth
// button.
const AlternateFieldName = "_alternate"

// DismissFieldName is the submit button name of the notification close
// button. Its value is the notification ID.
const DismissFieldName = "_dismiss"

// fieldClass joins the chrome class with state modifiers, for example
// "authform-field is-error is-touched".
func fieldClass(field render.PageField) string {
	classes := []string{string(ClassField)}
	switch field.State {
	case "error":
		classes = append(classes, "is-error")
	case "success":
		classes = append(classes, "is-success")
	}
	if field.Checkbox {
		classes = append(classes, "is-checkbox")
	}
	return strings.Join(classes, " ")
}

func messageClass(field render.PageField) string {
	if field.MessageVisible {
		return string(ClassMessage) + " is-visible"
	}
	return string(ClassMessage)
}

func notificationClass(n *render.PageNotification) string {
	if n == nil {
		return ""
	}
	return string(ClassNotification) + " is-" + strings.TrimSpace(n.Kind)
}
