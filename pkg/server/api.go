package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/goliatone/go-authform/pkg/form"
	"github.com/goliatone/go-authform/pkg/model"
	"github.com/goliatone/go-authform/pkg/validation"
)

// ErrUnknownForm is returned for form ids the store does not hold.
var ErrUnknownForm = errors.New("server: unknown form")

// ValidateRequest is the body of POST /api/validate. Form is optional; when
// empty the first form, in id order, defining Field is used. Password is the
// value compared against by confirmation fields.
type ValidateRequest struct {
	Form     string `json:"form,omitempty"`
	Field    string `json:"field"`
	Value    string `json:"value"`
	Password string `json:"password,omitempty"`
}

// ValidateResponse extends the validation result with the strength tier for
// fields that show a meter.
type ValidateResponse struct {
	validation.Result
	Form     string            `json:"form"`
	Field    string            `json:"field"`
	Strength *StrengthResponse `json:"strength,omitempty"`
}

// StrengthRequest is the body of POST /api/strength.
type StrengthRequest struct {
	Password string `json:"password"`
}

// StrengthResponse reports the tier and the rules that passed.
type StrengthResponse struct {
	Tier   validation.Tier           `json:"tier"`
	Label  string                    `json:"label"`
	Checks validation.PasswordChecks `json:"checks"`
}

func (s *Server) handleForm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	def, ok := s.forms.Form(id)
	if !ok {
		s.writeError(w, r, http.StatusNotFound, fmt.Errorf("%w: %q", ErrUnknownForm, id))
		return
	}
	writeJSON(w, http.StatusOK, def)
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}

	def, field, err := s.lookupField(req.Form, req.Field)
	if err != nil {
		s.writeError(w, r, http.StatusNotFound, err)
		return
	}

	related := ""
	if field.Confirms != "" {
		related = req.Password
	}
	result := form.ValidateField(field, req.Value, related)
	if s.metrics != nil {
		s.metrics.FieldValidated(def.ID, field.Name, result.State)
	}

	resp := ValidateResponse{Result: result, Form: def.ID, Field: field.Name}
	if field.Strength {
		resp.Strength = strengthOf(req.Value)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStrength(w http.ResponseWriter, r *http.Request) {
	var req StrengthRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, strengthOf(req.Password))
}

func (s *Server) lookupField(formID, name string) (model.FormModel, model.Field, error) {
	if name == "" {
		return model.FormModel{}, model.Field{}, fmt.Errorf("%w: empty name", form.ErrUnknownField)
	}
	ids := s.forms.IDs()
	if formID != "" {
		if _, ok := s.forms.Form(formID); !ok {
			return model.FormModel{}, model.Field{}, fmt.Errorf("%w: %q", ErrUnknownForm, formID)
		}
		ids = []string{formID}
	}
	for _, id := range ids {
		def, _ := s.forms.Form(id)
		if field, ok := def.Field(name); ok {
			return def, field, nil
		}
	}
	return model.FormModel{}, model.Field{}, fmt.Errorf("%w: %q", form.ErrUnknownField, name)
}

func strengthOf(password string) *StrengthResponse {
	tier := validation.ScoreStrength(password)
	return &StrengthResponse{
		Tier:   tier,
		Label:  tier.Label(),
		Checks: validation.CheckPasswordRules(password),
	}
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("server: decode body: %w", err)
	}
	return nil
}
