package uischema

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-authform/pkg/model"
	"github.com/goliatone/go-authform/pkg/validation"
)

// LoadFS walks the provided filesystem and parses JSON/YAML form definition
// files. When fsys is nil or no definition files are present, the returned
// store is empty.
func LoadFS(fsys fs.FS) (*Store, error) {
	store := &Store{forms: make(map[string]model.FormModel)}
	if fsys == nil {
		return store, nil
	}

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isSchemaFile(path) {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("uischema: read %s: %w", path, err)
		}

		doc, err := parseDocument(data, path)
		if err != nil {
			return err
		}

		for formID, raw := range doc.Forms {
			id := strings.TrimSpace(formID)
			if id == "" {
				return fmt.Errorf("uischema: file %s defines an empty form id", path)
			}
			if _, exists := store.forms[id]; exists {
				return fmt.Errorf("uischema: duplicate form %q (file %s)", id, path)
			}
			form, err := normaliseForm(raw, id, path)
			if err != nil {
				return err
			}
			store.forms[id] = form
			store.order = append(store.order, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(store.order)
	return store, nil
}

// NewStore builds a store from already normalised forms.
func NewStore(forms ...model.FormModel) (*Store, error) {
	store := &Store{forms: make(map[string]model.FormModel, len(forms))}
	for _, form := range forms {
		if err := store.Add(form); err != nil {
			return nil, err
		}
	}
	return store, nil
}

// Add registers form. Ids must be unique within the store.
func (s *Store) Add(form model.FormModel) error {
	id := strings.TrimSpace(form.ID)
	if id == "" {
		return fmt.Errorf("uischema: form id is required")
	}
	if len(form.Fields) == 0 {
		return fmt.Errorf("uischema: form %q defines no fields", id)
	}
	if _, exists := s.forms[id]; exists {
		return fmt.Errorf("uischema: duplicate form %q", id)
	}
	s.forms[id] = form
	s.order = append(s.order, id)
	sort.Strings(s.order)
	return nil
}

// Merge adds every form of other. Ids already present in s are replaced
// when override is set and rejected otherwise.
func (s *Store) Merge(other *Store, override bool) error {
	if other == nil {
		return nil
	}
	for _, id := range other.order {
		if _, exists := s.forms[id]; exists && override {
			delete(s.forms, id)
			s.order = removeID(s.order, id)
		}
		if err := s.Add(other.forms[id]); err != nil {
			return err
		}
	}
	return nil
}

func removeID(ids []string, id string) []string {
	out := ids[:0]
	for _, existing := range ids {
		if existing != id {
			out = append(out, existing)
		}
	}
	return out
}

// Normalize validates a serialized form and converts it to a model.FormModel.
// source names the origin in error messages.
func Normalize(id, source string, doc FormDocument) (model.FormModel, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return model.FormModel{}, fmt.Errorf("uischema: %s defines an empty form id", source)
	}
	return normaliseForm(doc, id, source)
}

// Form returns the definition registered under id.
func (s *Store) Form(id string) (model.FormModel, bool) {
	if s == nil {
		return model.FormModel{}, false
	}
	form, ok := s.forms[id]
	return form, ok
}

// IDs lists the loaded form ids in sorted order.
func (s *Store) IDs() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.order...)
}

// Empty reports whether the store holds any forms.
func (s *Store) Empty() bool {
	return s == nil || len(s.forms) == 0
}

func parseDocument(data []byte, source string) (documentFile, error) {
	var doc documentFile
	if len(strings.TrimSpace(string(data))) == 0 {
		return documentFile{}, fmt.Errorf("uischema: file %s is empty", source)
	}

	if err := json.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}

	if err := yaml.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}

	return documentFile{}, fmt.Errorf("uischema: parse %s: invalid JSON or YAML", source)
}

func normaliseForm(raw FormDocument, id, source string) (model.FormModel, error) {
	form := model.FormModel{
		ID:              id,
		Title:           strings.TrimSpace(raw.Title),
		Subtitle:        strings.TrimSpace(raw.Subtitle),
		SubmitLabel:     strings.TrimSpace(raw.Submit),
		Endpoint:        strings.TrimSpace(raw.Endpoint),
		Method:          strings.ToUpper(strings.TrimSpace(raw.Method)),
		RedirectTo:      strings.TrimSpace(raw.RedirectTo),
		SuccessMessage:  raw.SuccessMessage,
		FailureMessage:  raw.FailureMessage,
		InvalidMessage:  raw.InvalidMessage,
		AlternateSignIn: raw.AlternateSignIn,
	}
	if form.Method == "" {
		form.Method = "POST"
	}
	if form.SubmitLabel == "" {
		form.SubmitLabel = "Submit"
	}
	if raw.SubmitDelayMs != nil {
		if *raw.SubmitDelayMs < 0 {
			return model.FormModel{}, fmt.Errorf("uischema: form %q (file %s) has a negative submitDelayMs", id, source)
		}
		form.SubmitDelay = millis(*raw.SubmitDelayMs)
	}
	if raw.RedirectDelayMs != nil {
		if *raw.RedirectDelayMs < 0 {
			return model.FormModel{}, fmt.Errorf("uischema: form %q (file %s) has a negative redirectDelayMs", id, source)
		}
		form.RedirectDelay = millis(*raw.RedirectDelayMs)
	}

	for idx, link := range raw.Links {
		label := strings.TrimSpace(link.Label)
		href := strings.TrimSpace(link.Href)
		if label == "" || href == "" {
			return model.FormModel{}, fmt.Errorf("uischema: form %q (file %s) link %d needs a label and href", id, source, idx)
		}
		form.Links = append(form.Links, model.Link{Label: label, Href: href})
	}

	if len(raw.Fields) == 0 {
		return model.FormModel{}, fmt.Errorf("uischema: form %q (file %s) defines no fields", id, source)
	}
	seen := make(map[string]struct{}, len(raw.Fields))
	for idx, rawField := range raw.Fields {
		field, err := normaliseField(rawField)
		if err != nil {
			return model.FormModel{}, fmt.Errorf("uischema: form %q (file %s) field %d: %w", id, source, idx, err)
		}
		if _, dup := seen[field.Name]; dup {
			return model.FormModel{}, fmt.Errorf("uischema: form %q (file %s) defines duplicate field %q", id, source, field.Name)
		}
		seen[field.Name] = struct{}{}
		form.Fields = append(form.Fields, field)
	}

	for _, field := range form.Fields {
		if field.Confirms == "" {
			continue
		}
		if _, ok := seen[field.Confirms]; !ok {
			return model.FormModel{}, fmt.Errorf("uischema: form %q (file %s) field %q confirms unknown field %q", id, source, field.Name, field.Confirms)
		}
	}

	return form, nil
}

func normaliseField(raw FieldDocument) (model.Field, error) {
	name := strings.TrimSpace(raw.Name)
	if name == "" {
		return model.Field{}, fmt.Errorf("missing name")
	}
	validator := strings.TrimSpace(raw.Validator)
	if !validation.Known(validator) {
		return model.Field{}, fmt.Errorf("field %q uses unknown validator %q", name, validator)
	}
	if raw.MinLength < 0 || raw.DebounceMs < 0 {
		return model.Field{}, fmt.Errorf("field %q has a negative minLength or debounceMs", name)
	}

	role := model.FieldRole(strings.TrimSpace(raw.Role))
	if !role.Known() {
		return model.Field{}, fmt.Errorf("field %q uses unknown role %q", name, raw.Role)
	}

	fieldType := model.FieldType(strings.TrimSpace(raw.Type))
	switch fieldType {
	case "":
		fieldType = model.FieldTypeString
	case model.FieldTypeString, model.FieldTypeBoolean:
	default:
		return model.Field{}, fmt.Errorf("field %q has unsupported type %q", name, raw.Type)
	}

	field := model.Field{
		Name:        name,
		Type:        fieldType,
		Role:        role,
		Required:    raw.Required,
		Label:       strings.TrimSpace(raw.Label),
		Placeholder: raw.Placeholder,
		InputType:   strings.TrimSpace(raw.InputType),
		Validator:   validator,
		Message:     raw.Message,
		MinLength:   raw.MinLength,
		Debounce:    millis(raw.DebounceMs),
		Strength:    raw.Strength,
		Confirms:    strings.TrimSpace(raw.Confirms),
	}
	if field.Label == "" {
		field.Label = name
	}
	if field.InputType == "" {
		field.InputType = defaultInputType(field)
	}
	return field, nil
}

func defaultInputType(field model.Field) string {
	switch {
	case field.Type == model.FieldTypeBoolean:
		return "checkbox"
	case field.Role.Secret():
		return "password"
	case field.Role == model.RoleEmail:
		return "email"
	case field.Role == model.RolePhone:
		return "tel"
	default:
		return "text"
	}
}

func millis(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

func isSchemaFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
