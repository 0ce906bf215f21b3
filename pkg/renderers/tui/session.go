// Package tui drives an auth form from a terminal. A Session walks the
// form's fields through a PromptDriver and feeds every answer to a
// form.Controller, so terminal users see the same inline messages,
// strength ratings and notifications as the HTML surface.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/goliatone/go-authform/pkg/form"
	"github.com/goliatone/go-authform/pkg/model"
	"github.com/goliatone/go-authform/pkg/notify"
	"github.com/goliatone/go-authform/pkg/validation"
)

// Sign-in method choices offered when the form enables the alternate button.
const (
	MethodEmail     = "Continue with email"
	MethodAlternate = "Continue with Google"
)

var (
	// ErrAborted reports that the user interrupted a prompt with Ctrl+C.
	ErrAborted = errors.New("tui: aborted")
	// ErrGaveUp reports that the retry budget ran out without a successful
	// submission.
	ErrGaveUp = errors.New("tui: submission abandoned")
)

// Session prompts for one controller.
type Session struct {
	ctrl        *form.Controller
	driver      PromptDriver
	out         io.Writer
	theme       Theme
	maxAttempts int
}

// NewSession binds a controller to a prompt driver (survey by default).
func NewSession(ctrl *form.Controller, options ...Option) (*Session, error) {
	if ctrl == nil {
		return nil, errors.New("tui: controller is required")
	}
	s := &Session{
		ctrl:        ctrl,
		theme:       DefaultTheme(),
		maxAttempts: DefaultMaxAttempts,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	if s.driver == nil {
		s.driver = NewSurveyDriver(s.out)
	}
	return s, nil
}

// Run prompts every field, submits, and re-prompts after failures until the
// submission succeeds or the attempts run out. The returned view is the
// final controller snapshot.
func (s *Session) Run(ctx context.Context) (form.View, error) {
	if ctx == nil {
		return form.View{}, errors.New("tui: context is required")
	}
	def := s.ctrl.Form()

	if err := s.info(ctx, def.Title); err != nil {
		return s.ctrl.Snapshot(), err
	}
	if def.Subtitle != "" {
		if err := s.info(ctx, def.Subtitle); err != nil {
			return s.ctrl.Snapshot(), err
		}
	}
	if def.AlternateSignIn {
		if err := s.chooseMethod(ctx); err != nil {
			return s.ctrl.Snapshot(), err
		}
	}

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		for _, field := range def.Fields {
			if err := s.promptField(ctx, field); err != nil {
				return s.ctrl.Snapshot(), err
			}
		}

		if err := s.info(ctx, s.theme.InfoPrefix+"Submitting..."); err != nil {
			return s.ctrl.Snapshot(), err
		}
		err := s.ctrl.Submit(ctx)
		view := s.ctrl.Snapshot()
		if err == nil {
			if err := s.showNotification(ctx, view); err != nil {
				return view, err
			}
			if view.Redirect != "" {
				err = s.info(ctx, s.theme.InfoPrefix+"Redirecting to "+view.Redirect)
			}
			return view, err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return view, ctxErr
		}

		if errors.Is(err, form.ErrInvalid) {
			if err := s.showFieldErrors(ctx, view); err != nil {
				return view, err
			}
		}
		if err := s.showNotification(ctx, view); err != nil {
			return view, err
		}
		if attempt == s.maxAttempts {
			break
		}
		again, err := s.driver.Confirm(ctx, ConfirmConfig{Message: "Try again?", Default: true})
		if err != nil {
			return view, err
		}
		if !again {
			break
		}
	}
	return s.ctrl.Snapshot(), ErrGaveUp
}

func (s *Session) chooseMethod(ctx context.Context) error {
	idx, err := s.driver.Select(ctx, SelectConfig{
		Message: "How would you like to continue?",
		Options: []string{MethodEmail, MethodAlternate},
	})
	if err != nil {
		return err
	}
	if idx != 1 {
		return nil
	}
	if n, ok := s.ctrl.AlternateSignIn(); ok {
		return s.info(ctx, s.theme.InfoPrefix+n.Message)
	}
	return nil
}

func (s *Session) promptField(ctx context.Context, field model.Field) error {
	if field.Type == model.FieldTypeBoolean {
		return s.promptChecked(ctx, field)
	}

	label := displayLabel(field)
	for {
		current, _ := s.ctrl.Snapshot().Field(field.Name)
		cfg := InputConfig{Message: label, Help: field.Placeholder}

		var (
			value string
			err   error
		)
		if current.Masked {
			value, err = s.driver.Password(ctx, cfg)
		} else {
			cfg.Default = current.Value
			value, err = s.driver.Input(ctx, cfg)
		}
		if err != nil {
			return err
		}

		if err := s.ctrl.Focus(field.Name); err != nil {
			return err
		}
		if err := s.ctrl.Input(field.Name, value); err != nil {
			return err
		}
		if err := s.ctrl.Blur(field.Name); err != nil {
			return err
		}

		state, _ := s.ctrl.Snapshot().Field(field.Name)
		if field.Strength && value != "" {
			if err := s.info(ctx, s.theme.InfoPrefix+state.Strength.Label()); err != nil {
				return err
			}
		}
		switch {
		case state.State == validation.StateError:
			if err := s.info(ctx, s.theme.ErrorPrefix+state.Message); err != nil {
				return err
			}
		case field.Required && form.Blank(field, value):
			if err := s.info(ctx, s.theme.ErrorPrefix+requiredMessage(field)); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

func (s *Session) promptChecked(ctx context.Context, field model.Field) error {
	for {
		current, _ := s.ctrl.Snapshot().Field(field.Name)
		checked, err := s.driver.Confirm(ctx, ConfirmConfig{
			Message: displayLabel(field),
			Default: current.Checked,
		})
		if err != nil {
			return err
		}
		if err := s.ctrl.SetChecked(field.Name, checked); err != nil {
			return err
		}
		res := form.ValidateField(field, strconv.FormatBool(checked), "")
		if res.Valid {
			return nil
		}
		if err := s.info(ctx, s.theme.ErrorPrefix+res.Message); err != nil {
			return err
		}
	}
}

func (s *Session) showFieldErrors(ctx context.Context, view form.View) error {
	for _, field := range view.Fields {
		if field.State != validation.StateError || field.Message == "" {
			continue
		}
		if err := s.info(ctx, fmt.Sprintf("%s%s: %s", s.theme.ErrorPrefix, field.Label, field.Message)); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) showNotification(ctx context.Context, view form.View) error {
	n := view.Notification
	if n == nil || n.Message == "" {
		return nil
	}
	prefix := s.theme.SuccessPrefix
	if n.Kind == notify.KindError {
		prefix = s.theme.ErrorPrefix
	}
	return s.info(ctx, prefix+n.Message)
}

func (s *Session) info(ctx context.Context, msg string) error {
	if strings.TrimSpace(msg) == "" {
		return nil
	}
	return s.driver.Info(ctx, msg)
}

func displayLabel(field model.Field) string {
	label := field.Label
	if label == "" {
		label = field.Name
	}
	if field.Required {
		return label + " *"
	}
	return label
}

func requiredMessage(field model.Field) string {
	label := field.Label
	if label == "" {
		label = field.Name
	}
	return label + " is required"
}
