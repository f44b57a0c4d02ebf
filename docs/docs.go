// Package docs registers OpenAPI document of contacts API in swag registry.
//
// openapi.json is maintained by hand since swag generates Swagger 2.0 only.
// Routes and status codes must match @Router, @Success and @Failure annotations
// of internal/handlers, TestDocumentMatchesHandlerAnnotations fails otherwise.
package docs

import (
	_ "embed"

	"github.com/swaggo/swag"
)

//go:embed openapi.json
var docTemplate string

// SwaggerInfo holds exported document info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Contacts API",
	Description:      "Minimal contact management REST API backed by MongoDB",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
