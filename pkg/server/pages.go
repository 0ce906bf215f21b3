package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/goliatone/go-authform/pkg/form"
	"github.com/goliatone/go-authform/pkg/model"
	"github.com/goliatone/go-authform/pkg/notify"
	"github.com/goliatone/go-authform/pkg/render"
	"github.com/goliatone/go-authform/pkg/renderers/vanilla"
)

// VisibleFieldName carries the comma separated secret fields the user has
// unmasked, so visibility survives a re-render.
const VisibleFieldName = "_visible"

const (
	assetsPrefix = "/assets/"
	maxBodyBytes = 1 << 20
)

func routeFor(def model.FormModel) string {
	if endpoint := strings.TrimSpace(def.Endpoint); strings.HasPrefix(endpoint, "/") {
		return endpoint
	}
	return "/" + def.ID
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	id := model.FormSignIn
	if _, ok := s.forms.Form(id); !ok {
		id = s.forms.IDs()[0]
	}
	def, _ := s.forms.Form(id)
	http.Redirect(w, r, routeFor(def), http.StatusSeeOther)
}

func (s *Server) handlePage(def model.FormModel) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctrl, done, err := s.newController(def)
		if err != nil {
			s.writeError(w, r, http.StatusInternalServerError, err)
			return
		}
		defer done()
		s.respond(w, r, ctrl.Snapshot(), render.RenderOptions{Action: routeFor(def)}, http.StatusOK)
	}
}

// handlePost replays the posted values into a fresh controller. Named
// buttons select an action: toggling visibility, dismissing the
// notification or the alternate sign-in. Anything else submits.
func (s *Server) handlePost(def model.FormModel) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		values, err := readValues(r)
		if err != nil {
			s.writeError(w, r, http.StatusBadRequest, err)
			return
		}

		ctrl, done, err := s.newController(def)
		if err != nil {
			s.writeError(w, r, http.StatusInternalServerError, err)
			return
		}
		defer done()

		ctrl.Fill(values)
		for _, name := range splitList(values[VisibleFieldName]) {
			if _, err := ctrl.TogglePasswordVisibility(name); err != nil {
				s.logger.DebugContext(ctx, "ignoring visibility entry", slog.String("field", name))
			}
		}

		opts := render.RenderOptions{Action: routeFor(def)}
		status := http.StatusOK
		switch {
		case values[vanilla.ToggleFieldName] != "":
			if _, err := ctrl.TogglePasswordVisibility(values[vanilla.ToggleFieldName]); err != nil {
				s.writeError(w, r, http.StatusBadRequest, err)
				return
			}
			opts.EchoSecrets = true
		case values[vanilla.DismissFieldName] != "":
			// Notifications do not outlive the request, so the re-render
			// alone clears it.
			opts.EchoSecrets = true
		case values[vanilla.AlternateFieldName] != "":
			ctrl.AlternateSignIn()
			opts.EchoSecrets = true
		default:
			err := ctrl.Submit(ctx)
			status, opts.FormErrors = submitStatus(err)
			if err != nil {
				s.logger.InfoContext(ctx, "submission not accepted",
					slog.String("form", def.ID),
					slog.String("code", form.ErrorCode(err)),
					slog.Int("status", status),
				)
			}
		}

		view := ctrl.Snapshot()
		opts.Hidden = visibleHidden(view)
		s.respond(w, r, view, opts, status)
	}
}

func (s *Server) newController(def model.FormModel) (*form.Controller, func(), error) {
	notifyOpts := []notify.Option{
		notify.WithClock(s.clock),
		notify.WithLogger(s.logger),
	}
	controllerOpts := []form.Option{
		form.WithSubmitter(s.submitter),
		form.WithClock(s.clock),
		form.WithLogger(s.logger.With(slog.String("form", def.ID))),
	}
	if s.metrics != nil {
		notifyOpts = append(notifyOpts, notify.WithListener(s.metrics.NotificationListener()))
		controllerOpts = append(controllerOpts, form.WithRecorder(s.metrics))
	}

	notifier := notify.New(notifyOpts...)
	ctrl, err := form.New(def, append(controllerOpts, form.WithNotifier(notifier))...)
	if err != nil {
		notifier.Close()
		return nil, nil, err
	}
	return ctrl, func() {
		ctrl.Close()
		notifier.Close()
	}, nil
}

func submitStatus(err error) (int, []string) {
	if err == nil {
		return http.StatusOK, nil
	}
	if errors.Is(err, form.ErrInvalid) {
		return http.StatusUnprocessableEntity, nil
	}
	var rejected *form.RejectedError
	if errors.As(err, &rejected) {
		return http.StatusUnprocessableEntity, rejected.Form
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout, nil
	}
	return http.StatusBadGateway, nil
}

func visibleHidden(view form.View) []render.HiddenField {
	var names []string
	for _, field := range view.Fields {
		def, ok := view.Form.Field(field.Name)
		if !ok || !def.Secret() {
			continue
		}
		if !field.Masked {
			names = append(names, field.Name)
		}
	}
	if len(names) == 0 {
		return nil
	}
	return []render.HiddenField{render.Hidden(VisibleFieldName, strings.Join(names, ","))}
}

// readValues accepts urlencoded or multipart form posts and JSON objects.
// JSON booleans become "true" or "false".
func readValues(r *http.Request) (map[string]string, error) {
	if render.MediaType(r.Header.Get("Content-Type")) == "application/json" {
		var raw map[string]any
		if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&raw); err != nil {
			return nil, fmt.Errorf("server: decode body: %w", err)
		}
		values := make(map[string]string, len(raw))
		for key, value := range raw {
			switch v := value.(type) {
			case nil:
			case string:
				values[key] = v
			case bool:
				values[key] = strconv.FormatBool(v)
			default:
				values[key] = fmt.Sprint(v)
			}
		}
		return values, nil
	}

	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("server: parse form: %w", err)
	}
	values := make(map[string]string, len(r.PostForm))
	for key, list := range r.PostForm {
		if len(list) > 0 {
			values[key] = list[0]
		}
	}
	return values, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
