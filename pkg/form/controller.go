package form

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/goliatone/go-authform/pkg/clock"
	"github.com/goliatone/go-authform/pkg/debounce"
	"github.com/goliatone/go-authform/pkg/model"
	"github.com/goliatone/go-authform/pkg/notify"
	"github.com/goliatone/go-authform/pkg/validation"
)

// DefaultFailureMessage is used when a form definition carries none.
const DefaultFailureMessage = "Submission failed. Please try again."

// ErrClosed is returned by Submit after Close.
var ErrClosed = errors.New("form: controller closed")

// Navigator receives the redirect effect after a successful submission.
type Navigator interface {
	Navigate(target string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(target string)

// Navigate calls f.
func (f NavigatorFunc) Navigate(target string) { f(target) }

// Outcome labels a finished Submit call.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
	OutcomeInvalid Outcome = "invalid"
	OutcomeBusy    Outcome = "busy"
)

// Recorder observes validation and submission activity, typically for
// metrics.
type Recorder interface {
	FieldValidated(form, field string, state validation.State)
	SubmitFinished(form string, outcome Outcome, elapsed time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) FieldValidated(string, string, validation.State) {}
func (nopRecorder) SubmitFinished(string, Outcome, time.Duration)   {}

// Option configures a Controller.
type Option func(*Controller)

// WithNotifier shares a notification slot between controllers. Without it
// each controller owns a private Notifier.
func WithNotifier(n *notify.Notifier) Option {
	return func(c *Controller) {
		c.notifier = n
	}
}

// WithSubmitter replaces the default SimulatedSubmitter.
func WithSubmitter(s Submitter) Option {
	return func(c *Controller) {
		c.submitter = s
	}
}

// WithNavigator receives redirects after successful submissions.
func WithNavigator(n Navigator) Option {
	return func(c *Controller) {
		c.navigator = n
	}
}

// WithClock drives debounce, fade and redirect timers.
func WithClock(clk clock.Clock) Option {
	return func(c *Controller) {
		c.clock = clk
	}
}

// WithRecorder attaches a metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(c *Controller) {
		c.recorder = r
	}
}

// WithLogger attaches a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// Controller binds a form definition to per-field state and reacts to user
// events. All methods are safe for concurrent use; timers re-enter through
// the same lock, so observable behaviour matches a single event loop.
type Controller struct {
	mu         sync.Mutex
	form       model.FormModel
	index      map[string]int
	dependents map[string][]int
	fields     []FieldState
	fades      []uint64
	loading    bool
	closed     bool
	redirect   string
	redirected bool

	notifier     *notify.Notifier
	ownsNotifier bool
	submitter    Submitter
	navigator    Navigator
	recorder     Recorder
	clock        clock.Clock
	debouncer    *debounce.Debouncer
	logger       *slog.Logger
}

// New builds a controller for form.
func New(form model.FormModel, options ...Option) (*Controller, error) {
	if len(form.Fields) == 0 {
		return nil, fmt.Errorf("form: %q defines no fields", form.ID)
	}

	c := &Controller{
		form:       form,
		index:      make(map[string]int, len(form.Fields)),
		dependents: make(map[string][]int),
		fields:     make([]FieldState, len(form.Fields)),
		fades:      make([]uint64, len(form.Fields)),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}

	c.clock = clock.OrReal(c.clock)
	if c.notifier == nil {
		c.notifier = notify.New(notify.WithClock(c.clock), notify.WithLogger(c.logger))
		c.ownsNotifier = true
	}
	if c.submitter == nil {
		c.submitter = &SimulatedSubmitter{Clock: c.clock}
	}
	if c.navigator == nil {
		c.navigator = NavigatorFunc(func(string) {})
	}
	if c.recorder == nil {
		c.recorder = nopRecorder{}
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	c.logger = c.logger.With(slog.String("form", form.ID))
	c.debouncer = debounce.New(c.clock)

	for i, def := range form.Fields {
		if _, dup := c.index[def.Name]; dup {
			return nil, fmt.Errorf("form: %q defines duplicate field %q", form.ID, def.Name)
		}
		c.index[def.Name] = i
		c.fields[i] = FieldState{
			Name:   def.Name,
			Label:  def.Label,
			Role:   def.Role,
			Type:   def.Type,
			State:  validation.StateNeutral,
			Masked: def.Secret(),
		}
	}
	for i, def := range form.Fields {
		if def.Confirms == "" {
			continue
		}
		if _, ok := c.index[def.Confirms]; !ok {
			return nil, fmt.Errorf("form: %q field %q confirms unknown field %q", form.ID, def.Name, def.Confirms)
		}
		c.dependents[def.Confirms] = append(c.dependents[def.Confirms], i)
	}

	return c, nil
}

// Form returns the definition the controller was built from.
func (c *Controller) Form() model.FormModel {
	return c.form
}

// Notifier returns the notification slot used by the controller.
func (c *Controller) Notifier() *notify.Notifier {
	return c.notifier
}

// Focus marks a field as focused.
func (c *Controller) Focus(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	i, err := c.lookupLocked(name)
	if err != nil {
		return err
	}
	c.fields[i].Focused = true
	return nil
}

// Blur marks a field as touched and validates it, superseding any pending
// debounced check.
func (c *Controller) Blur(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	i, err := c.lookupLocked(name)
	if err != nil {
		return err
	}
	c.fields[i].Focused = false
	c.fields[i].Touched = true
	c.debouncer.Cancel(validateKey(name))
	c.validateLocked(i, false)
	return nil
}

// Input records a new value for a text field. Fields with the strength meter
// re-score and validate immediately; fields with a debounce validate once
// input has been quiet for the configured delay. Fields confirming this one
// are re-checked when they already hold a value.
func (c *Controller) Input(name, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	i, err := c.lookupLocked(name)
	if err != nil {
		return err
	}
	def := c.form.Fields[i]
	if def.Type == model.FieldTypeBoolean {
		return fmt.Errorf("form: field %q is a checkbox", name)
	}

	c.fields[i].Value = value
	c.fields[i].Touched = true
	if def.Strength {
		c.fields[i].Strength = validation.ScoreStrength(value)
		c.validateLocked(i, false)
	}
	for _, dep := range c.dependents[name] {
		if c.fields[dep].Value != "" {
			c.validateLocked(dep, false)
		}
	}

	if def.Debounce > 0 {
		key := validateKey(name)
		if value == "" {
			c.debouncer.Cancel(key)
		} else {
			c.debouncer.Trigger(key, def.Debounce, func() {
				c.debounced(i)
			})
		}
	}
	return nil
}

// SetChecked updates a checkbox field.
func (c *Controller) SetChecked(name string, checked bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	i, err := c.lookupLocked(name)
	if err != nil {
		return err
	}
	if c.form.Fields[i].Type != model.FieldTypeBoolean {
		return fmt.Errorf("form: field %q is not a checkbox", name)
	}
	c.fields[i].Checked = checked
	c.fields[i].Touched = true
	c.validateLocked(i, false)
	return nil
}

// Fill loads values without running per-keystroke effects, as a posted HTML
// form does. Checkbox fields read "true", "on", "1" and "yes" as checked;
// missing checkboxes are unchecked. Unknown keys are ignored.
func (c *Controller) Fill(values map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, def := range c.form.Fields {
		raw, ok := values[def.Name]
		if def.Type == model.FieldTypeBoolean {
			c.fields[i].Checked = ok && parseChecked(raw)
			continue
		}
		if !ok {
			continue
		}
		c.fields[i].Value = raw
		c.fields[i].Touched = true
		if def.Strength {
			c.fields[i].Strength = validation.ScoreStrength(raw)
		}
	}
}

// TogglePasswordVisibility flips a secret field between masked and plain
// text and returns the new masked state.
func (c *Controller) TogglePasswordVisibility(name string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i, err := c.lookupLocked(name)
	if err != nil {
		return false, err
	}
	def := c.form.Fields[i]
	if !def.Secret() {
		return false, fmt.Errorf("form: field %q has no visibility toggle", name)
	}
	c.fields[i].Masked = !c.fields[i].Masked
	return c.fields[i].Masked, nil
}

// AlternateSignIn handles the third-party sign-in button. It reports false
// when the form does not offer one.
func (c *Controller) AlternateSignIn() (notify.Notification, bool) {
	if !c.form.AlternateSignIn {
		return notify.Notification{}, false
	}
	return c.notifier.Success(model.AlternateSignInMessage), true
}

// DismissNotification closes the notification with the given id if it is
// still the visible one.
func (c *Controller) DismissNotification(id ulid.ULID) bool {
	return c.notifier.Dismiss(id)
}

// Submit validates every field, including untouched ones, and hands the
// values to the Submitter. Loading is cleared on every exit path. Invalid
// forms return an error wrapping ErrInvalid; backend failures are returned
// as reported by the Submitter after the failure notification is shown.
func (c *Controller) Submit(ctx context.Context) error {
	start := c.clock.Now()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.loading {
		c.mu.Unlock()
		c.recorder.SubmitFinished(c.form.ID, OutcomeBusy, 0)
		return ErrSubmitInProgress
	}

	var invalid []string
	checkboxMessage := ""
	for i, def := range c.form.Fields {
		c.debouncer.Cancel(validateKey(def.Name))
		c.fields[i].Touched = true
		res := c.validateLocked(i, true)
		if res.Passes() {
			continue
		}
		invalid = append(invalid, def.Name)
		if def.Type == model.FieldTypeBoolean && checkboxMessage == "" {
			checkboxMessage = res.Message
		}
	}

	if len(invalid) > 0 {
		c.mu.Unlock()
		switch {
		case checkboxMessage != "":
			c.notifier.Error(checkboxMessage)
		case c.form.InvalidMessage != "":
			c.notifier.Error(c.form.InvalidMessage)
		}
		c.logger.Debug("submission blocked", slog.Any("fields", invalid))
		c.recorder.SubmitFinished(c.form.ID, OutcomeInvalid, 0)
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(invalid, ", "))
	}

	c.loading = true
	submission := Submission{Form: c.form, Values: c.valuesLocked()}
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.loading = false
		c.mu.Unlock()
	}()

	err := c.submitter.Submit(ctx, submission)
	elapsed := c.clock.Now().Sub(start)
	if err != nil {
		c.applyRejection(err)
		message := c.form.FailureMessage
		if message == "" {
			message = DefaultFailureMessage
		}
		c.notifier.Error(message)
		c.logger.Warn("submission failed",
			slog.String("code", ErrorCode(err)),
			slog.Any("error", err),
		)
		c.recorder.SubmitFinished(c.form.ID, OutcomeFailure, elapsed)
		return err
	}

	if c.form.SuccessMessage != "" {
		c.notifier.Success(c.form.SuccessMessage)
	}
	c.logger.Info("submission succeeded", slog.Duration("elapsed", elapsed))
	c.recorder.SubmitFinished(c.form.ID, OutcomeSuccess, elapsed)

	if target := c.form.RedirectTo; target != "" {
		c.mu.Lock()
		c.redirect = target
		c.mu.Unlock()
		c.debouncer.Trigger(redirectKey, c.form.RedirectDelay, func() {
			c.navigate(target)
		})
	}
	return nil
}

// Loading reports whether a submission is in flight.
func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Values returns the values a submission would carry right now.
func (c *Controller) Values() map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.valuesLocked()
}

// Snapshot returns the current presentation state.
func (c *Controller) Snapshot() View {
	c.mu.Lock()
	view := View{
		Form:       c.form,
		Fields:     append([]FieldState(nil), c.fields...),
		Loading:    c.loading,
		Redirect:   c.redirect,
		Redirected: c.redirected,
	}
	c.mu.Unlock()

	if current, ok := c.notifier.Current(); ok {
		view.Notification = &current
	}
	return view
}

// Close stops every pending timer. A notifier created by the controller is
// closed too; a shared one is left alone.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	c.debouncer.Stop()
	if c.ownsNotifier {
		c.notifier.Close()
	}
}

func (c *Controller) lookupLocked(name string) (int, error) {
	i, ok := c.index[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return i, nil
}

// validateLocked evaluates field i and applies the result. strict turns an
// empty required field into a visible error.
func (c *Controller) validateLocked(i int, strict bool) validation.Result {
	def := c.form.Fields[i]
	state := c.fields[i]

	value := state.Value
	if def.Type == model.FieldTypeBoolean && state.Checked {
		value = "true"
	}
	related := ""
	if def.Confirms != "" {
		related = c.fields[c.index[def.Confirms]].Value
	}

	res := ValidateField(def, value, related)
	if strict && def.Required && isEmpty(def, state) {
		res = validation.Result{Valid: false, Message: requiredMessage(def), State: validation.StateError}
	}

	c.applyLocked(i, res)
	c.recorder.FieldValidated(c.form.ID, def.Name, res.State)
	return res
}

func (c *Controller) applyLocked(i int, res validation.Result) {
	field := &c.fields[i]
	field.State = res.State

	if res.State == validation.StateError {
		c.fades[i]++
		field.Message = res.Message
		field.MessageVisible = true
		c.debouncer.Cancel(fadeKey(field.Name))
		return
	}
	if !field.MessageVisible {
		return
	}

	c.fades[i]++
	field.MessageVisible = false
	gen := c.fades[i]
	c.debouncer.Trigger(fadeKey(field.Name), model.MessageFadeDelay, func() {
		c.fade(i, gen)
	})
}

func (c *Controller) applyRejection(err error) {
	var rejected *RejectedError
	if !errors.As(err, &rejected) || len(rejected.Fields) == 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for name, messages := range rejected.Fields {
		i, ok := c.index[name]
		if !ok || len(messages) == 0 {
			continue
		}
		c.applyLocked(i, validation.Result{Valid: false, Message: messages[0], State: validation.StateError})
	}
}

func (c *Controller) debounced(i int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.validateLocked(i, false)
}

func (c *Controller) fade(i int, gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fades[i] != gen || c.fields[i].MessageVisible {
		return
	}
	c.fields[i].Message = ""
}

func (c *Controller) navigate(target string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.redirected = true
	c.mu.Unlock()

	c.logger.Debug("redirect", slog.String("target", target))
	c.navigator.Navigate(target)
}

func (c *Controller) valuesLocked() map[string]any {
	out := make(map[string]any, len(c.fields))
	for i, def := range c.form.Fields {
		switch {
		case def.Type == model.FieldTypeBoolean:
			out[def.Name] = c.fields[i].Checked
		case def.Secret():
			out[def.Name] = c.fields[i].Value
		default:
			out[def.Name] = validation.TrimSpace(c.fields[i].Value)
		}
	}
	return out
}

const redirectKey = "redirect"

func validateKey(name string) string { return "validate:" + name }

func fadeKey(name string) string { return "fade:" + name }
