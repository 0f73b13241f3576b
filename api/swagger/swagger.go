package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {"title": "Civic Desk API", "description": "Citizen service requests, their status lifecycle and notifications.", "version": "1.0.0"},
    "basePath": "/api",
    "schemes": ["http", "https"],
    "securityDefinitions": {"BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}},
    "tags": [{"name": "Authentication"}, {"name": "Requests"}, {"name": "Attachments"}, {"name": "Categories"}, {"name": "Assignments"}, {"name": "Notifications"}, {"name": "Users"}, {"name": "Ops"}],
    "paths": {
        "/health": {
            "get": {"tags": ["Ops"], "summary": "Liveness probe", "produces": ["application/json"], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/auth/signup": {
            "post": {"tags": ["Authentication"], "summary": "Register a citizen account", "produces": ["application/json"], "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Invalid input", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SignupRequest"}}]}
        },
        "/auth/signin": {
            "post": {"tags": ["Authentication"], "summary": "Authenticate with email and password", "produces": ["application/json"], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SigninRequest"}}]}
        },
        "/auth/refresh": {
            "post": {"tags": ["Authentication"], "summary": "Rotate a refresh token", "produces": ["application/json"], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RefreshRequest"}}]}
        },
        "/auth/signout": {
            "post": {"tags": ["Authentication"], "summary": "Revoke the current session", "produces": ["application/json"], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "security": [{"BearerAuth": []}]}
        },
        "/auth/me": {
            "get": {"tags": ["Authentication"], "summary": "Current user profile", "produces": ["application/json"], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "security": [{"BearerAuth": []}]}
        },
        "/auth/profile": {
            "put": {"tags": ["Authentication"], "summary": "Update own profile", "produces": ["application/json"], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Invalid input", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateProfileRequest"}}], "security": [{"BearerAuth": []}]}
        },
        "/requests": {
            "get": {"tags": ["Requests"], "summary": "List requests", "produces": ["application/json"], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Invalid input", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "page", "in": "query", "type": "integer"}, {"name": "limit", "in": "query", "type": "integer", "description": "max 100"}, {"name": "status", "in": "query", "type": "string"}, {"name": "priority", "in": "query", "type": "string"}, {"name": "category_id", "in": "query", "type": "string"}], "security": [{"BearerAuth": []}]},
            "post": {"tags": ["Requests"], "summary": "Submit a request", "produces": ["application/json"], "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Invalid input", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateRequestPayload"}}], "security": [{"BearerAuth": []}]}
        },
        "/requests/statistics": {
            "get": {"tags": ["Requests"], "summary": "Request counts by status and priority", "produces": ["application/json"], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "security": [{"BearerAuth": []}]}
        },
        "/requests/export": {
            "get": {"tags": ["Requests"], "summary": "Export requests", "produces": ["text/csv", "application/pdf", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Invalid input", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "format", "in": "query", "type": "string", "description": "csv, pdf or xlsx"}, {"name": "status", "in": "query", "type": "string"}, {"name": "priority", "in": "query", "type": "string"}, {"name": "category_id", "in": "query", "type": "string"}], "security": [{"BearerAuth": []}]}
        },
        "/requests/track/{code}": {
            "get": {"tags": ["Requests"], "summary": "Look up a request by tracking code", "produces": ["application/json"], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "code", "in": "path", "required": true, "type": "string", "description": "Request code"}], "security": [{"BearerAuth": []}]}
        },
        "/requests/{id}": {
            "get": {"tags": ["Requests"], "summary": "Request detail with history", "produces": ["application/json"], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "id", "in": "path", "required": true, "type": "string", "description": "Request ID"}], "security": [{"BearerAuth": []}]},
            "put": {"tags": ["Requests"], "summary": "Update a request", "produces": ["application/json"], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Invalid input", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "409": {"description": "Invalid transition", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "id", "in": "path", "required": true, "type": "string", "description": "Request ID"}, {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateRequestPayload"}}], "security": [{"BearerAuth": []}]},
            "delete": {"tags": ["Requests"], "summary": "Delete a request", "produces": ["application/json"], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "id", "in": "path", "required": true, "type": "string", "description": "Request ID"}], "security": [{"BearerAuth": []}]}
        },
        "/requests/{id}/history": {
            "get": {"tags": ["Requests"], "summary": "Status history, newest first", "produces": ["application/json"], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "id", "in": "path", "required": true, "type": "string", "description": "Request ID"}], "security": [{"BearerAuth": []}]}
        },
        "/requests/{id}/attachments": {
            "get": {"tags": ["Attachments"], "summary": "List attachments with signed download links", "produces": ["application/json"], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "id", "in": "path", "required": true, "type": "string", "description": "Request ID"}], "security": [{"BearerAuth": []}]},
            "post": {"tags": ["Attachments"], "summary": "Attach a file", "produces": ["application/json"], "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Invalid input", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "413": {"description": "Payload too large", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "id", "in": "path", "required": true, "type": "string", "description": "Request ID"}, {"name": "file", "in": "formData", "required": true, "type": "file"}], "security": [{"BearerAuth": []}], "consumes": ["multipart/form-data"]}
        },
        "/attachments/download": {
            "get": {"tags": ["Attachments"], "summary": "Download through a signed link", "produces": ["application/octet-stream"], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "token", "in": "query", "type": "string"}]}
        },
        "/attachments/{id}": {
            "delete": {"tags": ["Attachments"], "summary": "Remove an attachment", "produces": ["application/json"], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "id", "in": "path", "required": true, "type": "string", "description": "Attachment ID"}], "security": [{"BearerAuth": []}]}
        },
        "/categories": {
            "get": {"tags": ["Categories"], "summary": "List categories", "produces": ["application/json"], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}},
            "post": {"tags": ["Categories"], "summary": "Create category", "produces": ["application/json"], "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Invalid input", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CategoryPayload"}}], "security": [{"BearerAuth": []}]}
        },
        "/categories/{id}": {
            "get": {"tags": ["Categories"], "summary": "Get category", "produces": ["application/json"], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "id", "in": "path", "required": true, "type": "string", "description": "Category ID"}]},
            "put": {"tags": ["Categories"], "summary": "Update category", "produces": ["application/json"], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Invalid input", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "id", "in": "path", "required": true, "type": "string", "description": "Category ID"}, {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CategoryPayload"}}], "security": [{"BearerAuth": []}]}
        },
        "/assignments": {
            "get": {"tags": ["Assignments"], "summary": "List assignments", "produces": ["application/json"], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "page", "in": "query", "type": "integer"}, {"name": "limit", "in": "query", "type": "integer", "description": "max 100"}, {"name": "assigned_to", "in": "query", "type": "string"}, {"name": "status", "in": "query", "type": "string"}], "security": [{"BearerAuth": []}]},
            "post": {"tags": ["Assignments"], "summary": "Assign a request to a staff member", "produces": ["application/json"], "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Invalid input", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateAssignmentPayload"}}], "security": [{"BearerAuth": []}]}
        },
        "/assignments/{id}": {
            "get": {"tags": ["Assignments"], "summary": "Get assignment", "produces": ["application/json"], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "id", "in": "path", "required": true, "type": "string", "description": "Assignment ID"}], "security": [{"BearerAuth": []}]},
            "put": {"tags": ["Assignments"], "summary": "Update assignment", "produces": ["application/json"], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Invalid input", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "409": {"description": "Invalid transition", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "id", "in": "path", "required": true, "type": "string", "description": "Assignment ID"}, {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateAssignmentPayload"}}], "security": [{"BearerAuth": []}]}
        },
        "/notifications": {
            "get": {"tags": ["Notifications"], "summary": "List own notifications", "produces": ["application/json"], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "page", "in": "query", "type": "integer"}, {"name": "limit", "in": "query", "type": "integer", "description": "max 100"}, {"name": "unread", "in": "query", "type": "boolean"}], "security": [{"BearerAuth": []}]}
        },
        "/notifications/unread-count": {
            "get": {"tags": ["Notifications"], "summary": "Count unread notifications", "produces": ["application/json"], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "security": [{"BearerAuth": []}]}
        },
        "/notifications/read-all": {
            "put": {"tags": ["Notifications"], "summary": "Mark all notifications read", "produces": ["application/json"], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "security": [{"BearerAuth": []}]}
        },
        "/notifications/{id}/read": {
            "put": {"tags": ["Notifications"], "summary": "Mark a notification read", "produces": ["application/json"], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "id", "in": "path", "required": true, "type": "string", "description": "Notification ID"}], "security": [{"BearerAuth": []}]}
        },
        "/notifications/{id}": {
            "delete": {"tags": ["Notifications"], "summary": "Delete a notification", "produces": ["application/json"], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "id", "in": "path", "required": true, "type": "string", "description": "Notification ID"}], "security": [{"BearerAuth": []}]}
        },
        "/users": {
            "get": {"tags": ["Users"], "summary": "List users", "produces": ["application/json"], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "page", "in": "query", "type": "integer"}, {"name": "limit", "in": "query", "type": "integer", "description": "max 100"}, {"name": "role", "in": "query", "type": "string"}], "security": [{"BearerAuth": []}]}
        },
        "/users/{id}": {
            "get": {"tags": ["Users"], "summary": "Get user", "produces": ["application/json"], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "id", "in": "path", "required": true, "type": "string", "description": "User ID"}], "security": [{"BearerAuth": []}]}
        },
        "/users/{id}/role": {
            "put": {"tags": ["Users"], "summary": "Change a user's role", "produces": ["application/json"], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Invalid input", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "id", "in": "path", "required": true, "type": "string", "description": "User ID"}, {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SetRoleRequest"}}], "security": [{"BearerAuth": []}]}
        },
        "/assignments/{id}/accept": {
            "post": {"tags": ["Assignments"], "summary": "Accept an assignment", "produces": ["application/json"], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "409": {"description": "Invalid transition", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "id", "in": "path", "required": true, "type": "string", "description": "Assignment ID"}, {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AssignmentActionPayload"}}], "security": [{"BearerAuth": []}]}
        },
        "/assignments/{id}/reject": {
            "post": {"tags": ["Assignments"], "summary": "Reject an assignment", "produces": ["application/json"], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "409": {"description": "Invalid transition", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "id", "in": "path", "required": true, "type": "string", "description": "Assignment ID"}, {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AssignmentActionPayload"}}], "security": [{"BearerAuth": []}]}
        },
        "/assignments/{id}/complete": {
            "post": {"tags": ["Assignments"], "summary": "Complete an assignment", "produces": ["application/json"], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "409": {"description": "Invalid transition", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "id", "in": "path", "required": true, "type": "string", "description": "Assignment ID"}, {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AssignmentActionPayload"}}], "security": [{"BearerAuth": []}]}
        }
    },
    "definitions": {
        "SignupRequest": {"type": "object", "required": ["email", "password", "full_name"], "properties": {"email": {"type": "string", "format": "email"}, "password": {"type": "string", "minLength": 8}, "full_name": {"type": "string", "minLength": 3}, "phone": {"type": "string"}, "role": {"type": "string", "enum": ["citizen", "staff", "deputy", "admin"]}, "national_id": {"type": "string"}}},
        "SigninRequest": {"type": "object", "required": ["email", "password"], "properties": {"email": {"type": "string"}, "password": {"type": "string"}}},
        "RefreshRequest": {"type": "object", "required": ["refresh_token"], "properties": {"refresh_token": {"type": "string"}}},
        "UpdateProfileRequest": {"type": "object", "properties": {"full_name": {"type": "string"}, "phone": {"type": "string"}, "avatar_url": {"type": "string", "format": "uri"}, "region": {"type": "string"}}},
        "Location": {"type": "object", "properties": {"lat": {"type": "number"}, "lng": {"type": "number"}}},
        "CreateRequestPayload": {"type": "object", "required": ["category_id", "title", "description"], "properties": {"category_id": {"type": "string", "format": "uuid"}, "title": {"type": "string", "minLength": 5}, "description": {"type": "string", "minLength": 20}, "priority": {"type": "string", "enum": ["low", "normal", "high", "urgent"]}, "location": {"$ref": "#/definitions/Location"}, "location_text": {"type": "string"}}},
        "UpdateRequestPayload": {"type": "object", "properties": {"category_id": {"type": "string", "format": "uuid"}, "title": {"type": "string", "minLength": 5}, "description": {"type": "string", "minLength": 20}, "priority": {"type": "string", "enum": ["low", "normal", "high", "urgent"]}, "status": {"type": "string", "enum": ["pending", "in_progress", "resolved", "rejected", "closed"]}, "location": {"$ref": "#/definitions/Location"}, "location_text": {"type": "string"}, "resolution_notes": {"type": "string"}, "rating": {"type": "integer", "minimum": 1, "maximum": 5}, "feedback": {"type": "string"}}},
        "CategoryPayload": {"type": "object", "required": ["name"], "properties": {"name": {"type": "string", "minLength": 3}, "description": {"type": "string"}, "icon": {"type": "string"}, "color": {"type": "string"}}},
        "CreateAssignmentPayload": {"type": "object", "required": ["request_id", "assigned_to"], "properties": {"request_id": {"type": "string", "format": "uuid"}, "assigned_to": {"type": "string", "format": "uuid"}, "priority": {"type": "string", "enum": ["low", "normal", "high", "urgent"]}, "notes": {"type": "string"}, "due_date": {"type": "string", "format": "date-time"}}},
        "UpdateAssignmentPayload": {"type": "object", "properties": {"status": {"type": "string", "enum": ["pending", "in_progress", "completed", "rejected"]}, "priority": {"type": "string", "enum": ["low", "normal", "high", "urgent"]}, "notes": {"type": "string"}, "due_date": {"type": "string", "format": "date-time"}}},
        "AssignmentActionPayload": {"type": "object", "properties": {"notes": {"type": "string"}}},
        "SetRoleRequest": {"type": "object", "required": ["role"], "properties": {"role": {"type": "string", "enum": ["citizen", "staff", "deputy", "admin"]}}},
        "ResponseEnvelope": {"type": "object", "properties": {"success": {"type": "boolean"}, "data": {"type": "object"}, "error": {"type": "string"}, "code": {"type": "string"}, "field": {"type": "string"}, "message": {"type": "string"}, "meta": {"type": "object"}}}
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
