package form_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-authform/pkg/form"
	"github.com/goliatone/go-authform/pkg/model"
	"github.com/goliatone/go-authform/pkg/testsupport"
)

func signInSubmission(t *testing.T) form.Submission {
	return form.Submission{
		Form:   testsupport.SignInForm(t),
		Values: map[string]any{"email": "a@b.c", "password": "secret1"},
	}
}

func TestHTTPSubmitter_Success(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/signin" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("X-Client") != "authform" {
			t.Errorf("missing custom header")
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	submitter := &form.HTTPSubmitter{
		BaseURL: srv.URL + "/",
		Client:  srv.Client(),
		Header:  http.Header{"X-Client": []string{"authform"}},
	}
	if err := submitter.Submit(context.Background(), signInSubmission(t)); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if diff := cmp.Diff(map[string]any{"email": "a@b.c", "password": "secret1"}, got); diff != "" {
		t.Fatalf("body mismatch (-want +got):\n%s", diff)
	}
}

func TestHTTPSubmitter_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"Bad credentials","errors":{"/body/email":["Unknown account"]}}`))
	}))
	defer srv.Close()

	submitter := &form.HTTPSubmitter{BaseURL: srv.URL, Client: srv.Client()}
	err := submitter.Submit(context.Background(), signInSubmission(t))
	if form.ErrorCode(err) != form.CodeSubmitRejected {
		t.Fatalf("expected rejected code, got %q (%v)", form.ErrorCode(err), err)
	}

	var rejected *form.RejectedError
	if !errors.As(err, &rejected) {
		t.Fatalf("expected RejectedError, got %v", err)
	}
	want := &form.RejectedError{
		Status: http.StatusUnprocessableEntity,
		Fields: map[string][]string{"email": {"Unknown account"}},
		Form:   []string{"Bad credentials"},
	}
	if diff := cmp.Diff(want, rejected); diff != "" {
		t.Fatalf("rejection mismatch (-want +got):\n%s", diff)
	}
}

func TestHTTPSubmitter_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	submitter := &form.HTTPSubmitter{BaseURL: url}
	err := submitter.Submit(context.Background(), signInSubmission(t))
	if form.ErrorCode(err) != form.CodeSubmitFailed {
		t.Fatalf("expected failed code, got %q (%v)", form.ErrorCode(err), err)
	}
}

func TestSimulatedSubmitter(t *testing.T) {
	sub := form.Submission{Form: model.FormModel{ID: "x", SubmitDelay: time.Second}}

	t.Run("scripted failure", func(t *testing.T) {
		s := &form.SimulatedSubmitter{Fail: func(form.Submission) error { return errors.New("nope") }, Delay: time.Millisecond}
		err := s.Submit(context.Background(), sub)
		if form.ErrorCode(err) != form.CodeSubmitFailed {
			t.Fatalf("expected failed code, got %v", err)
		}
	})

	t.Run("context cancelled", func(t *testing.T) {
		clk := testsupport.NewFakeClock()
		s := &form.SimulatedSubmitter{Clock: clk}
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := s.Submit(ctx, sub)
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		if clk.Pending() != 0 {
			t.Fatalf("timer must be stopped on cancel")
		}
	})
}
