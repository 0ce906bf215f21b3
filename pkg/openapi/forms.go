package openapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-authform/pkg/model"
	"github.com/goliatone/go-authform/pkg/uischema"
	"github.com/goliatone/go-authform/pkg/validation"
)

// Extension is the vendor extension read from operations and schema
// properties. On an operation it holds form settings using the same keys as
// the YAML definitions plus "id" and "order"; on a property it holds field
// overrides.
const Extension = "x-authform"

// ErrNoForms is returned when a document has no annotated POST operations.
var ErrNoForms = errors.New("openapi: no x-authform operations found")

// ParseOption tunes Forms.
type ParseOption func(*parseConfig)

type parseConfig struct {
	validate     bool
	externalRefs bool
}

// WithValidation toggles document validation before extraction. Enabled by
// default.
func WithValidation(enabled bool) ParseOption {
	return func(cfg *parseConfig) {
		cfg.validate = enabled
	}
}

// WithExternalRefs allows $ref pointers outside the document.
func WithExternalRefs(enabled bool) ParseOption {
	return func(cfg *parseConfig) {
		cfg.externalRefs = enabled
	}
}

type formExtension struct {
	ID    string   `json:"id"`
	Order []string `json:"order"`
	uischema.FormDocument
}

// Forms extracts one form per annotated POST operation, ordered by path.
func Forms(ctx context.Context, doc Document, options ...ParseOption) ([]model.FormModel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cfg := parseConfig{validate: true}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}

	raw := doc.Raw()
	if len(raw) == 0 {
		return nil, errors.New("openapi: document payload is empty")
	}
	loader := &openapi3.Loader{
		Context:               ctx,
		IsExternalRefsAllowed: cfg.externalRefs,
	}
	spec, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	if cfg.validate {
		if err := spec.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			return nil, fmt.Errorf("openapi: validate: %w", err)
		}
	}
	if spec.Paths == nil || spec.Paths.Len() == 0 {
		return nil, ErrNoForms
	}

	items := spec.Paths.Map()
	paths := make([]string, 0, len(items))
	for p := range items {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var forms []model.FormModel
	seen := make(map[string]string)
	for _, p := range paths {
		item := items[p]
		if item == nil || item.Post == nil {
			continue
		}
		if _, ok := item.Post.Extensions[Extension]; !ok {
			continue
		}
		form, err := formFromOperation(doc.Location(), p, item.Post)
		if err != nil {
			return nil, err
		}
		if other, dup := seen[form.ID]; dup {
			return nil, fmt.Errorf("openapi: form %q defined by %s and %s", form.ID, other, p)
		}
		seen[form.ID] = p
		forms = append(forms, form)
	}
	if len(forms) == 0 {
		return nil, ErrNoForms
	}
	return forms, nil
}

func formFromOperation(location, route string, op *openapi3.Operation) (model.FormModel, error) {
	var ext formExtension
	if err := decodeExtension(op.Extensions[Extension], &ext); err != nil {
		return model.FormModel{}, fmt.Errorf("openapi: POST %s: decode %s: %w", route, Extension, err)
	}

	id := strings.TrimSpace(ext.ID)
	if id == "" {
		id = op.OperationID
	}
	if id == "" {
		id = path.Base(route)
	}

	doc := ext.FormDocument
	if doc.Endpoint == "" {
		doc.Endpoint = route
	}
	if doc.Method == "" {
		doc.Method = "POST"
	}
	if doc.Title == "" {
		doc.Title = op.Summary
	}
	if doc.Subtitle == "" {
		doc.Subtitle = op.Description
	}

	schema := requestSchema(op.RequestBody)
	if schema == nil || len(schema.Properties) == 0 {
		return model.FormModel{}, fmt.Errorf("openapi: POST %s has no object request body", route)
	}

	required := make(map[string]bool, len(schema.Required))
	for _, name := range schema.Required {
		required[name] = true
	}

	doc.Fields = nil
	for _, name := range propertyOrder(schema, ext.Order) {
		field, err := fieldFromSchema(name, schema.Properties[name], required[name])
		if err != nil {
			return model.FormModel{}, fmt.Errorf("openapi: POST %s property %q: %w", route, name, err)
		}
		doc.Fields = append(doc.Fields, field)
	}
	linkConfirmations(doc.Fields)

	source := route
	if location != "" {
		source = location + "#" + route
	}
	return uischema.Normalize(id, source, doc)
}

func requestSchema(body *openapi3.RequestBodyRef) *openapi3.Schema {
	if body == nil || body.Value == nil {
		return nil
	}
	content := body.Value.Content
	for _, mediaType := range []string{"application/json", "application/x-www-form-urlencoded"} {
		if mt, ok := content[mediaType]; ok && mt.Schema != nil {
			return mt.Schema.Value
		}
	}
	return nil
}

// propertyOrder honours the explicit order, then required properties in
// declaration order, then the rest alphabetically.
func propertyOrder(schema *openapi3.Schema, explicit []string) []string {
	var names []string
	used := make(map[string]bool, len(schema.Properties))
	add := func(name string) {
		if _, ok := schema.Properties[name]; !ok || used[name] {
			return
		}
		used[name] = true
		names = append(names, name)
	}
	for _, name := range explicit {
		add(name)
	}
	for _, name := range schema.Required {
		add(name)
	}
	rest := make([]string, 0, len(schema.Properties))
	for name := range schema.Properties {
		if !used[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	for _, name := range rest {
		add(name)
	}
	return names
}

func fieldFromSchema(name string, ref *openapi3.SchemaRef, required bool) (uischema.FieldDocument, error) {
	var field uischema.FieldDocument
	if ref == nil || ref.Value == nil {
		return field, errors.New("schema is missing")
	}
	schema := ref.Value
	if err := decodeExtension(schema.Extensions[Extension], &field); err != nil {
		return field, fmt.Errorf("decode %s: %w", Extension, err)
	}

	field.Name = name
	field.Required = field.Required || required
	if field.Type == "" && schemaType(schema) == "boolean" {
		field.Type = string(model.FieldTypeBoolean)
	}
	if field.Role == "" {
		field.Role = string(inferRole(name, schema))
	}
	if field.Label == "" {
		field.Label = schema.Title
	}
	if field.Placeholder == "" {
		if example, ok := schema.Example.(string); ok {
			field.Placeholder = example
		}
	}
	if field.MinLength == 0 && schema.MinLength > 0 {
		field.MinLength = int(schema.MinLength)
	}
	if field.Validator == "" {
		field.Validator = defaultValidator(model.FieldRole(field.Role), field.Strength)
	}
	return field, nil
}

// linkConfirmations points confirm-password fields without an explicit
// target at the form's password field.
func linkConfirmations(fields []uischema.FieldDocument) {
	password := ""
	for _, field := range fields {
		if model.FieldRole(field.Role) == model.RolePassword {
			password = field.Name
			break
		}
	}
	if password == "" {
		return
	}
	for i := range fields {
		if model.FieldRole(fields[i].Role) == model.RoleConfirmPassword && fields[i].Confirms == "" {
			fields[i].Confirms = password
		}
	}
}

func inferRole(name string, schema *openapi3.Schema) model.FieldRole {
	key := strings.ToLower(strings.NewReplacer("_", "", "-", "").Replace(name))
	format := strings.ToLower(schema.Format)
	switch {
	case format == "email" || strings.Contains(key, "email"):
		return model.RoleEmail
	case strings.Contains(key, "password") && (strings.Contains(key, "confirm") || strings.Contains(key, "repeat")):
		return model.RoleConfirmPassword
	case format == "password" || strings.Contains(key, "password"):
		return model.RolePassword
	case key == "firstname" || key == "givenname":
		return model.RoleFirstName
	case key == "lastname" || key == "familyname" || key == "surname":
		return model.RoleLastName
	case strings.Contains(key, "phone") || key == "tel":
		return model.RolePhone
	case schemaType(schema) == "boolean" && (strings.Contains(key, "terms") || strings.Contains(key, "agree")):
		return model.RoleTerms
	default:
		return ""
	}
}

func defaultValidator(role model.FieldRole, strength bool) string {
	switch role {
	case model.RoleEmail:
		return validation.ValidatorEmail
	case model.RoleFirstName, model.RoleLastName:
		return validation.ValidatorName
	case model.RolePhone:
		return validation.ValidatorPhone
	case model.RolePassword:
		if strength {
			return validation.ValidatorPassword
		}
	}
	return ""
}

func schemaType(schema *openapi3.Schema) string {
	if schema.Type == nil {
		return ""
	}
	values := schema.Type.Slice()
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func decodeExtension(raw any, target any) error {
	if raw == nil {
		return nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, target)
}
