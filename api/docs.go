// Package api contains the OpenAPI documentation of the analytics API.
//
// Regenerate it with "swag init -o api" after changing endpoint annotations.
package api

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/": {
            "get": {
                "description": "Entrypoint for the API, listing all endpoints",
                "tags": ["General"],
                "summary": "API root",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/version": {
            "get": {
                "description": "Returns the software version of the API",
                "tags": ["General"],
                "summary": "API version",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/v1": {
            "get": {
                "description": "Returns general information about the v1 API",
                "tags": ["v1"],
                "summary": "v1 API",
                "responses": {"200": {"description": "OK"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "",
	Host:             "",
	BasePath:         "",
	Schemes:          []string{},
	Title:            "",
	Description:      "",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
