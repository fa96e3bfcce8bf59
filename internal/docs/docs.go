// Package docs holds the OpenAPI document for the relay server, registered
// with swag so gin-swagger can serve it under /swagger. Regenerate with
// `swag init -g cmd/server/main.go -o internal/docs` after changing handler
// annotations.
package docs

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
        "/clients": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Clients"],
                "summary": "List stored client requests (paginated)",
                "operationId": "listClientRequests",
                "parameters": [
                    {"type": "string", "description": "Return 304 if ETag matches", "name": "If-None-Match", "in": "header"},
                    {"minimum": 1, "type": "integer", "default": 1, "description": "Page number", "name": "page", "in": "query"},
                    {"maximum": 100, "minimum": 1, "type": "integer", "default": 20, "description": "Items per page", "name": "page_size", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.ListClientsResponse"}, "headers": {"ETag": {"type": "string", "description": "Weak ETag for current result"}}},
                    "304": {"description": "Not Modified", "schema": {"type": "string"}},
                    "500": {"description": "Internal error", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Clients"],
                "summary": "Store a relayed client request",
                "operationId": "createClientRequest",
                "parameters": [
                    {"type": "string", "description": "Retry key (the relay sends the record id)", "name": "Idempotency-Key", "in": "header"},
                    {"description": "Submission record", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.CreateClientRequest"}}
                ],
                "responses": {
                    "200": {"description": "Replayed delivery", "schema": {"$ref": "#/definitions/domain.ClientRequest"}},
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/domain.ClientRequest"}},
                    "400": {"description": "Bad request", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "409": {"description": "Record already stored", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "413": {"description": "Body too large", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "500": {"description": "Internal error", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/clients/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Clients"],
                "summary": "Get one stored client request",
                "operationId": "getClientRequest",
                "parameters": [
                    {"type": "integer", "description": "Record id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.ClientRequest"}},
                    "400": {"description": "Bad request", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "500": {"description": "Internal error", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "domain.ClientRequest": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "timestamp": {"type": "string"},
                "name": {"type": "string"},
                "email": {"type": "string"},
                "phone": {"type": "string"},
                "whatsapp": {"type": "string"},
                "productDetails": {"type": "string"},
                "imageFile": {"type": "string"},
                "receivedAt": {"type": "string"}
            }
        },
        "handlers.CreateClientRequest": {
            "type": "object",
            "required": ["email", "id", "name", "phone", "productDetails", "timestamp"],
            "properties": {
                "id": {"type": "integer", "example": 1714555800123},
                "timestamp": {"type": "string", "example": "2024-05-01T09:30:00.123Z"},
                "name": {"type": "string", "maxLength": 255, "example": "Ana Gomez"},
                "email": {"type": "string", "maxLength": 255, "example": "ana@x.com"},
                "phone": {"type": "string", "maxLength": 64, "example": "555"},
                "whatsapp": {"type": "string", "maxLength": 64, "example": "+92 300 1234567"},
                "productDetails": {"type": "string", "example": "Need 100 units"},
                "imageFile": {"type": "string", "maxLength": 255, "example": "catalog.png"}
            }
        },
        "handlers.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "string", "example": "not_found"},
                "message": {"type": "string", "example": "client request not found"},
                "request_id": {"type": "string", "example": "123e4567-e89b-12d3-a456-426614174000"}
            }
        },
        "handlers.ListClientsResponse": {
            "type": "object",
            "properties": {
                "clients": {"type": "array", "items": {"$ref": "#/definitions/domain.ClientRequest"}},
                "pagination": {"$ref": "#/definitions/handlers.Pagination"}
            }
        },
        "handlers.Pagination": {
            "type": "object",
            "properties": {
                "has_next": {"type": "boolean"},
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total": {"type": "integer"},
                "total_pages": {"type": "integer"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "PakChina Leads relay API",
	Description:      "Stores product requests relayed by form hosts.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
