package form_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/samber/oops"
	"go.uber.org/goleak"

	"github.com/goliatone/go-authform/pkg/form"
	"github.com/goliatone/go-authform/pkg/model"
	"github.com/goliatone/go-authform/pkg/notify"
	"github.com/goliatone/go-authform/pkg/testsupport"
	"github.com/goliatone/go-authform/pkg/validation"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type validationRecorder struct {
	mu       sync.Mutex
	states   map[string][]validation.State
	outcomes []form.Outcome
}

func (r *validationRecorder) FieldValidated(_, field string, state validation.State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.states == nil {
		r.states = make(map[string][]validation.State)
	}
	r.states[field] = append(r.states[field], state)
}

func (r *validationRecorder) SubmitFinished(_ string, outcome form.Outcome, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, outcome)
}

func (r *validationRecorder) field(name string) []validation.State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]validation.State(nil), r.states[name]...)
}

func newController(t *testing.T, def model.FormModel, opts ...form.Option) (*form.Controller, *testsupport.FakeClock) {
	t.Helper()
	clk := testsupport.NewFakeClock()
	ctrl, err := form.New(def, append([]form.Option{form.WithClock(clk)}, opts...)...)
	if err != nil {
		t.Fatalf("form.New: %v", err)
	}
	t.Cleanup(ctrl.Close)
	return ctrl, clk
}

func mustField(t *testing.T, ctrl *form.Controller, name string) form.FieldState {
	t.Helper()
	state, ok := ctrl.Snapshot().Field(name)
	if !ok {
		t.Fatalf("field %q missing from snapshot", name)
	}
	return state
}

func succeed() form.Submitter {
	return form.SubmitterFunc(func(context.Context, form.Submission) error { return nil })
}

func TestController_BlurShowsAndFadesMessage(t *testing.T) {
	ctrl, clk := newController(t, testsupport.SignInForm(t))

	if err := ctrl.Input("email", "not-an-email"); err != nil {
		t.Fatalf("Input: %v", err)
	}
	if err := ctrl.Blur("email"); err != nil {
		t.Fatalf("Blur: %v", err)
	}
	got := mustField(t, ctrl, "email")
	if got.State != validation.StateError || !got.MessageVisible || got.Message != "Please enter a valid email address" {
		t.Fatalf("unexpected error state: %+v", got)
	}

	_ = ctrl.Input("email", "a@b.c")
	_ = ctrl.Blur("email")
	got = mustField(t, ctrl, "email")
	if got.State != validation.StateSuccess || got.MessageVisible {
		t.Fatalf("expected success with hidden message, got %+v", got)
	}
	if got.Message == "" {
		t.Fatalf("message text should survive until the fade completes")
	}

	clk.Advance(model.MessageFadeDelay)
	if got := mustField(t, ctrl, "email"); got.Message != "" {
		t.Fatalf("expected message cleared after fade, got %q", got.Message)
	}
}

func TestController_BlurEmptyRequiredStaysNeutral(t *testing.T) {
	ctrl, _ := newController(t, testsupport.SignUpForm(t))

	_ = ctrl.Focus("firstName")
	_ = ctrl.Blur("firstName")

	got := mustField(t, ctrl, "firstName")
	if got.State != validation.StateNeutral || got.MessageVisible || !got.Touched || got.Focused {
		t.Fatalf("unexpected state: %+v", got)
	}
}

func TestController_DebouncedEmailValidatesOnce(t *testing.T) {
	rec := &validationRecorder{}
	ctrl, clk := newController(t, testsupport.SignInForm(t), form.WithRecorder(rec))

	_ = ctrl.Input("email", "a")
	clk.Advance(100 * time.Millisecond)
	_ = ctrl.Input("email", "a@")
	clk.Advance(100 * time.Millisecond)
	_ = ctrl.Input("email", "a@b.c")

	clk.Advance(model.SignInEmailDebounce - time.Millisecond)
	if states := rec.field("email"); len(states) != 0 {
		t.Fatalf("validated before input went quiet: %v", states)
	}

	clk.Advance(time.Millisecond)
	if diff := cmp.Diff([]validation.State{validation.StateSuccess}, rec.field("email")); diff != "" {
		t.Fatalf("validations mismatch (-want +got):\n%s", diff)
	}
}

func TestController_DebounceUsesLatestValue(t *testing.T) {
	ctrl, clk := newController(t, testsupport.SignUpForm(t))

	_ = ctrl.Input("email", "a@b.c")
	clk.Advance(200 * time.Millisecond)
	_ = ctrl.Input("email", "broken")
	clk.Advance(model.SignUpEmailDebounce)

	if got := mustField(t, ctrl, "email"); got.State != validation.StateError {
		t.Fatalf("expected latest value to win, got %+v", got)
	}
	if clk.Pending() != 0 {
		t.Fatalf("expected no pending timers, got %d", clk.Pending())
	}
}

func TestController_ClearingInputCancelsDebounce(t *testing.T) {
	rec := &validationRecorder{}
	ctrl, clk := newController(t, testsupport.SignInForm(t), form.WithRecorder(rec))

	_ = ctrl.Input("email", "x")
	_ = ctrl.Input("email", "")
	clk.Advance(time.Second)

	if states := rec.field("email"); len(states) != 0 {
		t.Fatalf("expected no validation, got %v", states)
	}
}

func TestController_StrengthAndConfirm(t *testing.T) {
	ctrl, clk := newController(t, testsupport.SignUpForm(t))

	_ = ctrl.Input("confirmPassword", "Abcdef12")
	clk.Advance(model.ConfirmPasswordDebounce)
	if got := mustField(t, ctrl, "confirmPassword"); got.State != validation.StateError || got.Message != validation.ConfirmMismatchMessage {
		t.Fatalf("expected mismatch before password typed, got %+v", got)
	}

	_ = ctrl.Input("password", "Abcdef12")
	password := mustField(t, ctrl, "password")
	if password.Strength != validation.TierGood || password.State != validation.StateSuccess {
		t.Fatalf("unexpected password state: %+v", password)
	}
	if got := mustField(t, ctrl, "confirmPassword"); got.State != validation.StateSuccess {
		t.Fatalf("confirm should re-check on password input, got %+v", got)
	}

	_ = ctrl.Input("password", "abc")
	password = mustField(t, ctrl, "password")
	if password.Strength != validation.TierWeak || password.Message != validation.PasswordRulesMessage {
		t.Fatalf("unexpected weak password state: %+v", password)
	}

	_ = ctrl.Input("password", "")
	if got := mustField(t, ctrl, "password"); got.Strength != validation.TierNone || got.State != validation.StateNeutral {
		t.Fatalf("expected reset meter, got %+v", got)
	}
}

func TestController_TogglePasswordVisibility(t *testing.T) {
	ctrl, _ := newController(t, testsupport.SignInForm(t))

	if !mustField(t, ctrl, "password").Masked {
		t.Fatalf("password should start masked")
	}
	masked, err := ctrl.TogglePasswordVisibility("password")
	if err != nil || masked {
		t.Fatalf("expected plain text, got masked=%v err=%v", masked, err)
	}
	masked, _ = ctrl.TogglePasswordVisibility("password")
	if !masked {
		t.Fatalf("expected masked again")
	}
	if _, err := ctrl.TogglePasswordVisibility("email"); err == nil {
		t.Fatalf("email has no visibility toggle")
	}
}

func TestController_PasswordInputWithoutRoleIsSecret(t *testing.T) {
	def := model.FormModel{
		ID: "unlock",
		Fields: []model.Field{
			{Name: "pin", Type: model.FieldTypeString, InputType: "password", Label: "PIN", Required: true},
		},
	}
	ctrl, _ := newController(t, def, form.WithSubmitter(succeed()))

	if !mustField(t, ctrl, "pin").Masked {
		t.Fatalf("password input should start masked")
	}
	if _, err := ctrl.TogglePasswordVisibility("pin"); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if err := ctrl.Input("pin", "  "); err != nil {
		t.Fatalf("input: %v", err)
	}
	if diff := cmp.Diff(map[string]any{"pin": "  "}, ctrl.Values()); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
	if err := ctrl.Submit(context.Background()); err != nil {
		t.Fatalf("whitespace secret should satisfy required: %v", err)
	}
}

func TestController_UnknownField(t *testing.T) {
	ctrl, _ := newController(t, testsupport.SignInForm(t))
	if err := ctrl.Blur("nope"); !errors.Is(err, form.ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
	if err := ctrl.SetChecked("email", true); err == nil {
		t.Fatalf("expected error setting checked on a text field")
	}
}

func TestController_SubmitBlocksUntouchedRequiredFields(t *testing.T) {
	called := false
	submitter := form.SubmitterFunc(func(context.Context, form.Submission) error {
		called = true
		return nil
	})
	ctrl, _ := newController(t, testsupport.SignInForm(t), form.WithSubmitter(submitter))

	err := ctrl.Submit(context.Background())
	if !errors.Is(err, form.ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
	if called {
		t.Fatalf("submitter must not run for invalid forms")
	}

	email := mustField(t, ctrl, "email")
	if email.State != validation.StateError || email.Message != "Email address is required" {
		t.Fatalf("unexpected email state: %+v", email)
	}
	if _, ok := ctrl.Notifier().Current(); ok {
		t.Fatalf("sign in shows failures inline only")
	}
	if ctrl.Loading() {
		t.Fatalf("loading must not be set for invalid forms")
	}
}

func TestController_SubmitSignUpTermsFirst(t *testing.T) {
	ctrl, _ := newController(t, testsupport.SignUpForm(t), form.WithSubmitter(succeed()))

	ctrl.Fill(map[string]string{
		"firstName":       "Jane",
		"lastName":        "Doe",
		"email":           "jane@example.com",
		"password":        "Abcdef12",
		"confirmPassword": "Abcdef12",
	})
	err := ctrl.Submit(context.Background())
	if !errors.Is(err, form.ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
	current, ok := ctrl.Notifier().Current()
	if !ok || current.Kind != notify.KindError || current.Message != "Please agree to the Terms of Service and Privacy Policy" {
		t.Fatalf("unexpected notification: %+v ok=%v", current, ok)
	}

	ctrl.Fill(map[string]string{
		"firstName":       "J4ne",
		"lastName":        "Doe",
		"email":           "jane@example.com",
		"password":        "Abcdef12",
		"confirmPassword": "Abcdef12",
		"terms":           "on",
	})
	err = ctrl.Submit(context.Background())
	if !errors.Is(err, form.ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
	current, _ = ctrl.Notifier().Current()
	if current.Message != "Please fix the errors above" {
		t.Fatalf("unexpected notification %q", current.Message)
	}
}

func TestController_SubmitSuccessRedirects(t *testing.T) {
	var (
		mu      sync.Mutex
		visited []string
		got     form.Submission
	)
	navigator := form.NavigatorFunc(func(target string) {
		mu.Lock()
		defer mu.Unlock()
		visited = append(visited, target)
	})
	submitter := form.SubmitterFunc(func(_ context.Context, sub form.Submission) error {
		got = sub
		return nil
	})
	rec := &validationRecorder{}
	ctrl, clk := newController(t, testsupport.SignInForm(t),
		form.WithSubmitter(submitter),
		form.WithNavigator(navigator),
		form.WithRecorder(rec),
	)

	_ = ctrl.Input("email", "  a@b.c ")
	_ = ctrl.Input("password", " secret ")
	if err := ctrl.Submit(context.Background()); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	wantValues := map[string]any{"email": "a@b.c", "password": " secret "}
	if diff := cmp.Diff(wantValues, got.Values); diff != "" {
		t.Fatalf("submitted values mismatch (-want +got):\n%s", diff)
	}

	current, ok := ctrl.Notifier().Current()
	if !ok || current.Kind != notify.KindSuccess || current.Message != "Sign in successful! Redirecting..." {
		t.Fatalf("unexpected notification %+v", current)
	}
	view := ctrl.Snapshot()
	if view.Loading || view.Redirect != "/dashboard" || view.Redirected {
		t.Fatalf("unexpected view: loading=%v redirect=%q redirected=%v", view.Loading, view.Redirect, view.Redirected)
	}

	clk.Advance(model.SignInRedirectDelay)
	mu.Lock()
	defer mu.Unlock()
	if diff := cmp.Diff([]string{"/dashboard"}, visited); diff != "" {
		t.Fatalf("navigation mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]form.Outcome{form.OutcomeSuccess}, rec.outcomes); diff != "" {
		t.Fatalf("outcomes mismatch (-want +got):\n%s", diff)
	}
}

func TestController_SubmitFailureKeepsValues(t *testing.T) {
	submitter := form.SubmitterFunc(func(context.Context, form.Submission) error {
		return oops.Code(form.CodeSubmitFailed).Errorf("backend down")
	})
	ctrl, _ := newController(t, testsupport.SignInForm(t), form.WithSubmitter(submitter))

	_ = ctrl.Input("email", "a@b.c")
	_ = ctrl.Input("password", "secret1")
	err := ctrl.Submit(context.Background())
	if err == nil || form.ErrorCode(err) != form.CodeSubmitFailed {
		t.Fatalf("expected coded failure, got %v", err)
	}

	current, _ := ctrl.Notifier().Current()
	if current.Kind != notify.KindError || current.Message != "Invalid email or password. Please try again." {
		t.Fatalf("unexpected notification %+v", current)
	}
	if ctrl.Loading() {
		t.Fatalf("loading must be cleared after failure")
	}
	if diff := cmp.Diff(map[string]any{"email": "a@b.c", "password": "secret1"}, ctrl.Values()); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
}

func TestController_SubmitRejectedMapsFieldErrors(t *testing.T) {
	submitter := form.SubmitterFunc(func(context.Context, form.Submission) error {
		return oops.Code(form.CodeSubmitRejected).Wrap(&form.RejectedError{
			Status: 422,
			Fields: map[string][]string{"email": {"Email already registered"}},
		})
	})
	ctrl, _ := newController(t, testsupport.SignInForm(t), form.WithSubmitter(submitter))

	_ = ctrl.Input("email", "a@b.c")
	_ = ctrl.Input("password", "secret1")
	err := ctrl.Submit(context.Background())

	var rejected *form.RejectedError
	if !errors.As(err, &rejected) || rejected.Status != 422 {
		t.Fatalf("expected RejectedError, got %v", err)
	}
	email := mustField(t, ctrl, "email")
	if email.State != validation.StateError || email.Message != "Email already registered" {
		t.Fatalf("unexpected email state: %+v", email)
	}
}

func TestController_SubmitInProgress(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	submitter := form.SubmitterFunc(func(ctx context.Context, _ form.Submission) error {
		close(entered)
		<-release
		return nil
	})
	rec := &validationRecorder{}
	ctrl, _ := newController(t, testsupport.SignInForm(t), form.WithSubmitter(submitter), form.WithRecorder(rec))
	_ = ctrl.Input("email", "a@b.c")
	_ = ctrl.Input("password", "secret1")

	done := make(chan error, 1)
	go func() { done <- ctrl.Submit(context.Background()) }()
	<-entered

	if !ctrl.Loading() {
		t.Fatalf("expected loading while submitter runs")
	}
	if err := ctrl.Submit(context.Background()); !errors.Is(err, form.ErrSubmitInProgress) {
		t.Fatalf("expected ErrSubmitInProgress, got %v", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if ctrl.Loading() {
		t.Fatalf("loading must be cleared")
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if diff := cmp.Diff([]form.Outcome{form.OutcomeBusy, form.OutcomeSuccess}, rec.outcomes); diff != "" {
		t.Fatalf("outcomes mismatch (-want +got):\n%s", diff)
	}
}

func TestController_SimulatedSubmitterUsesFormDelay(t *testing.T) {
	clk := testsupport.NewFakeClock()
	ctrl, err := form.New(testsupport.SignUpForm(t),
		form.WithClock(clk),
		form.WithSubmitter(&form.SimulatedSubmitter{Clock: clk}),
	)
	if err != nil {
		t.Fatalf("form.New: %v", err)
	}
	defer ctrl.Close()

	ctrl.Fill(map[string]string{
		"firstName":       "Jane",
		"lastName":        "Doe",
		"email":           "jane@example.com",
		"phone":           "+1 234 567",
		"password":        "abc",
		"confirmPassword": "abc",
		"terms":           "true",
	})
	if err := ctrl.Submit(context.Background()); !errors.Is(err, form.ErrInvalid) {
		t.Fatalf("weak password must block submission, got %v", err)
	}
	clk.Advance(model.MessageFadeDelay)

	ctrl.Fill(map[string]string{
		"firstName":       "Jane",
		"lastName":        "Doe",
		"email":           "jane@example.com",
		"phone":           "+1 234 567",
		"password":        "Abcdef12",
		"confirmPassword": "Abcdef12",
		"terms":           "true",
	})

	done := make(chan error, 1)
	pending := clk.Pending()
	go func() { done <- ctrl.Submit(context.Background()) }()
	// Submit schedules the password message fade and then the submit delay.
	if !clk.WaitForTimers(pending+2, time.Second) {
		t.Fatalf("submitter never scheduled its delay")
	}
	clk.Advance(model.SignUpSubmitDelay - time.Millisecond)
	select {
	case err := <-done:
		t.Fatalf("submit finished early: %v", err)
	default:
	}
	clk.Advance(time.Millisecond)

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Submit: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("submit did not finish")
	}

	current, _ := ctrl.Notifier().Current()
	if current.Message != "Account created successfully! Please check your email to verify your account." {
		t.Fatalf("unexpected notification %q", current.Message)
	}
}

func TestController_AlternateSignIn(t *testing.T) {
	ctrl, _ := newController(t, testsupport.SignInForm(t))
	n, ok := ctrl.AlternateSignIn()
	if !ok || n.Message != model.AlternateSignInMessage || n.Kind != notify.KindSuccess {
		t.Fatalf("unexpected alternate sign in: %+v ok=%v", n, ok)
	}
	if !ctrl.DismissNotification(n.ID) {
		t.Fatalf("expected dismiss to succeed")
	}
}

func TestController_SharedNotifierLatestWins(t *testing.T) {
	clk := testsupport.NewFakeClock()
	shared := notify.New(notify.WithClock(clk))
	defer shared.Close()

	signin, err := form.New(testsupport.SignInForm(t), form.WithClock(clk), form.WithNotifier(shared))
	if err != nil {
		t.Fatalf("form.New: %v", err)
	}
	defer signin.Close()
	signup, err := form.New(testsupport.SignUpForm(t), form.WithClock(clk), form.WithNotifier(shared))
	if err != nil {
		t.Fatalf("form.New: %v", err)
	}
	defer signup.Close()

	signin.AlternateSignIn()
	_ = signup.Submit(context.Background())

	current, _ := shared.Current()
	if current.Message != "Please agree to the Terms of Service and Privacy Policy" {
		t.Fatalf("expected latest notification to win, got %q", current.Message)
	}
}

func TestNew_RejectsBrokenDefinitions(t *testing.T) {
	if _, err := form.New(model.FormModel{ID: "empty"}); err == nil {
		t.Fatalf("expected error for empty form")
	}
	broken := model.FormModel{ID: "x", Fields: []model.Field{{Name: "a", Confirms: "b"}}}
	if _, err := form.New(broken); err == nil {
		t.Fatalf("expected error for dangling confirm")
	}
}
