// Package openapi derives auth form definitions from an OpenAPI 3 document.
// Every POST operation carrying an x-authform extension becomes one
// model.FormModel; its JSON request body properties become fields.
package openapi
