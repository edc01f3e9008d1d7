package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Qatra Admin Console",
        "description": "Admin console for the volunteer organisation API",
        "version": "0.1.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Session", "description": "Admin bearer token"},
        {"name": "JoinRequests", "description": "Join request review"},
        {"name": "Members", "description": "Approved member directory"},
        {"name": "Reports", "description": "Weekly low-lecture report"},
        {"name": "JoinForm", "description": "Public volunteer sign-up"},
        {"name": "Metrics", "description": "Client observability"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "A backing dependency is unavailable"}
                }
            }
        },
        "/api/v1/session": {
            "put": {
                "tags": ["Session"],
                "summary": "Store the admin token",
                "parameters": [
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/SessionRequest"}}
                ],
                "responses": {
                    "200": {"description": "Signed in", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Missing token", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Token already expired", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Session"],
                "summary": "Drop the admin token",
                "responses": {"204": {"description": "Signed out"}}
            }
        },
        "/api/v1/join-requests": {
            "get": {
                "tags": ["JoinRequests"],
                "summary": "List join requests, newest first",
                "parameters": [
                    {"in": "query", "name": "refresh", "type": "boolean", "description": "Fetch from the server before answering"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Not signed in or session expired", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/join-requests/{id}/approve": {
            "post": {
                "tags": ["JoinRequests"],
                "summary": "Approve a pending join request",
                "parameters": [
                    {"in": "path", "name": "id", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Approved", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already processed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "429": {"description": "Another action is in flight", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/join-requests/{id}/reject": {
            "post": {
                "tags": ["JoinRequests"],
                "summary": "Reject a pending join request",
                "parameters": [
                    {"in": "path", "name": "id", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Rejected", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already processed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "429": {"description": "Another action is in flight", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/join-requests/{id}": {
            "delete": {
                "tags": ["JoinRequests"],
                "summary": "Delete a join request",
                "parameters": [
                    {"in": "path", "name": "id", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Deleted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown join request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/members": {
            "get": {
                "tags": ["Members"],
                "summary": "List approved members",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/v1/members/{id}": {
            "get": {
                "tags": ["Members"],
                "summary": "Get one member",
                "parameters": [
                    {"in": "path", "name": "id", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/reports/low-lecture": {
            "get": {
                "tags": ["Reports"],
                "summary": "Low-lecture report",
                "parameters": [
                    {"in": "query", "name": "refresh", "type": "boolean"},
                    {"in": "query", "name": "debug", "type": "boolean"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/v1/reports/low-lecture/{memberId}": {
            "delete": {
                "tags": ["Reports"],
                "summary": "Remove a member from this week's report",
                "parameters": [
                    {"in": "path", "name": "memberId", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Removed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "429": {"description": "Removal for this member already in flight", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/reports/low-lecture/export": {
            "get": {
                "tags": ["Reports"],
                "summary": "Export the low-lecture report",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"in": "query", "name": "format", "type": "string", "enum": ["csv", "pdf"]},
                    {"in": "query", "name": "refresh", "type": "boolean"}
                ],
                "responses": {
                    "200": {"description": "File attachment", "schema": {"type": "file"}},
                    "400": {"description": "Unsupported format", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/join": {
            "post": {
                "tags": ["JoinForm"],
                "summary": "Submit the public join form",
                "parameters": [
                    {"in": "body", "name": "payload", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "201": {"description": "Received", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid form", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Email already registered", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/metrics/summary": {
            "get": {
                "tags": ["Metrics"],
                "summary": "Client metrics summary",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        }
    },
    "definitions": {
        "SessionRequest": {
            "type": "object",
            "required": ["token"],
            "properties": {
                "token": {"type": "string"}
            }
        },
        "ErrorBody": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "kind": {"type": "string"},
                "messageKey": {"type": "string"},
                "status": {"type": "integer"},
                "local": {"type": "boolean"},
                "reauthRequired": {"type": "boolean"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/ErrorBody"},
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
