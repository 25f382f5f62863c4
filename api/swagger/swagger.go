package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "DocTrack API",
        "description": "Document approval tracking for campus workflows",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Authentication and sessions"},
        {"name": "Documents", "description": "Submission and approval workflow"},
        {"name": "Dashboard", "description": "Per-role summary counts"},
        {"name": "Notifications", "description": "In-app notification feed"},
        {"name": "Categories", "description": "File categories and designations"},
        {"name": "Users", "description": "User directory"},
        {"name": "Exports", "description": "Document register exports"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate with email and password",
                "responses": {
                    "200": {"description": "Tokens and user info"},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Auth"],
                "summary": "Rotate the refresh token",
                "responses": {
                    "200": {"description": "New token pair"}
                }
            }
        },
        "/documents": {
            "get": {
                "tags": ["Documents"],
                "summary": "List documents visible to the caller",
                "parameters": [
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "priority", "in": "query", "type": "string"},
                    {"name": "categoryId", "in": "query", "type": "string"},
                    {"name": "search", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Documents with derived stages"}
                }
            },
            "post": {
                "tags": ["Documents"],
                "summary": "Submit a document for approval",
                "responses": {
                    "201": {"description": "Created document"},
                    "400": {"description": "Validation failure"}
                }
            }
        },
        "/documents/approved": {
            "get": {
                "tags": ["Documents"],
                "summary": "List the approved repository",
                "responses": {
                    "200": {"description": "Approved documents visible to the caller"}
                }
            }
        },
        "/documents/archived": {
            "get": {
                "tags": ["Documents"],
                "summary": "List archived documents",
                "responses": {
                    "200": {"description": "Archived documents visible to the caller"}
                }
            }
        },
        "/documents/{id}": {
            "get": {
                "tags": ["Documents"],
                "summary": "Get document detail",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "Document with stage and assignatories"},
                    "404": {"description": "Not found"}
                }
            },
            "delete": {
                "tags": ["Documents"],
                "summary": "Delete an unapproved document",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "204": {"description": "Deleted"},
                    "409": {"description": "Document already approved"}
                }
            }
        },
        "/documents/{id}/timeline": {
            "get": {
                "tags": ["Documents"],
                "summary": "Get a document's history and stage snapshot",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "Timeline and workflow steps"}
                }
            }
        },
        "/documents/{id}/approve": {
            "post": {
                "tags": ["Documents"],
                "summary": "Approve a pending document",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "Approved document"},
                    "409": {"description": "Already approved or rejected"}
                }
            }
        },
        "/documents/{id}/reject": {
            "post": {
                "tags": ["Documents"],
                "summary": "Reject a pending document",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "Rejected document"},
                    "409": {"description": "Already approved or rejected"}
                }
            }
        },
        "/documents/{id}/forward": {
            "post": {
                "tags": ["Documents"],
                "summary": "Forward a document to the next review tier",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "Document with updated assignatories"},
                    "403": {"description": "Role cannot forward"}
                }
            }
        },
        "/documents/{id}/attachment": {
            "put": {
                "tags": ["Documents"],
                "summary": "Replace the stored attachment with a signed copy",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "Document with new attachment"}
                }
            }
        },
        "/dashboard/summary": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Dashboard counts for the caller's scope",
                "responses": {
                    "200": {"description": "Summary counts"}
                }
            }
        },
        "/notifications": {
            "get": {
                "tags": ["Notifications"],
                "summary": "List the caller's notifications",
                "responses": {
                    "200": {"description": "Notifications with unread count"}
                }
            }
        },
        "/exports/register": {
            "post": {
                "tags": ["Exports"],
                "summary": "Generate a document register export",
                "parameters": [{"name": "format", "in": "query", "type": "string"}],
                "responses": {
                    "200": {"description": "Signed download descriptor"}
                }
            }
        }
    },
    "definitions": {
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"type": "object"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
