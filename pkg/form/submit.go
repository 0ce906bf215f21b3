package form

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/samber/oops"

	"github.com/goliatone/go-authform/pkg/clock"
	"github.com/goliatone/go-authform/pkg/model"
)

// Submission is the payload handed to a Submitter once every field passes.
// Values holds trimmed strings for text fields, raw strings for secret
// fields and bools for checkboxes.
type Submission struct {
	Form   model.FormModel
	Values map[string]any
}

// Submitter performs the (possibly remote) sign-in or sign-up operation.
type Submitter interface {
	Submit(ctx context.Context, submission Submission) error
}

// SubmitterFunc adapts a function to Submitter.
type SubmitterFunc func(ctx context.Context, submission Submission) error

// Submit calls f.
func (f SubmitterFunc) Submit(ctx context.Context, submission Submission) error {
	return f(ctx, submission)
}

// SimulatedSubmitter waits for a fixed delay and then succeeds unless Fail
// returns an error. It stands in for an authentication backend.
type SimulatedSubmitter struct {
	// Delay overrides the form's SubmitDelay when positive.
	Delay time.Duration
	Clock clock.Clock
	// Fail, when set, decides the outcome after the delay.
	Fail func(Submission) error
}

// Submit implements Submitter.
func (s *SimulatedSubmitter) Submit(ctx context.Context, submission Submission) error {
	delay := s.Delay
	if delay <= 0 {
		delay = submission.Form.SubmitDelay
	}

	builder := oops.Code(CodeSubmitFailed).With("form", submission.Form.ID)
	if delay > 0 {
		done := make(chan struct{})
		timer := clock.OrReal(s.Clock).AfterFunc(delay, func() { close(done) })
		select {
		case <-done:
		case <-ctx.Done():
			timer.Stop()
			return builder.Wrap(ctx.Err())
		}
	}

	if s.Fail != nil {
		if err := s.Fail(submission); err != nil {
			return builder.Wrap(err)
		}
	}
	return nil
}

const maxErrorBody = 1 << 20

// HTTPSubmitter posts the submission values as JSON to BaseURL joined with
// the form endpoint. Non-2xx answers become a RejectedError; the body may
// carry {"message": "...", "errors": {"field": ["..."]}}.
type HTTPSubmitter struct {
	BaseURL string
	Client  *http.Client
	Header  http.Header
}

// Submit implements Submitter.
func (h *HTTPSubmitter) Submit(ctx context.Context, submission Submission) error {
	form := submission.Form
	target := strings.TrimRight(h.BaseURL, "/") + "/" + strings.TrimLeft(form.Endpoint, "/")
	method := form.Method
	if method == "" {
		method = http.MethodPost
	}

	builder := oops.Code(CodeSubmitFailed).With("form", form.ID).With("url", target)

	body, err := json.Marshal(submission.Values)
	if err != nil {
		return builder.Wrapf(err, "encode submission")
	}

	req, err := http.NewRequestWithContext(ctx, method, target, bytes.NewReader(body))
	if err != nil {
		return builder.Wrapf(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for key, values := range h.Header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return builder.Wrapf(err, "%s %s", method, target)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
		return nil
	}

	var payload struct {
		Message string              `json:"message"`
		Errors  map[string][]string `json:"errors"`
	}
	// A body that is not JSON still yields a rejection without details.
	_ = json.NewDecoder(io.LimitReader(resp.Body, maxErrorBody)).Decode(&payload)

	mapping := MapErrorPayload(form, payload.Errors)
	rejected := &RejectedError{
		Status: resp.StatusCode,
		Fields: mapping.Fields,
		Form:   MergeFormErrors(mapping.Form, payload.Message),
	}
	return oops.Code(CodeSubmitRejected).
		With("form", form.ID).
		With("status", resp.StatusCode).
		Wrap(rejected)
}
