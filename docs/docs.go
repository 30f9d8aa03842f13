// Package docs holds the OpenAPI description served at /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/session": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "List sessions",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.SessionsResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Sign in",
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/handler.LoginRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.LoginResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Sign out",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.MessageResponse"}},
                    "204": {"description": "No Content"}
                }
            }
        },
        "/session/refresh": {
            "get": {
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Refresh the access token",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.RefreshResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            },
            "post": {
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Refresh the access token",
                "parameters": [{"in": "body", "name": "request", "schema": {"$ref": "#/definitions/handler.RefreshRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.RefreshResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/user": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["user"],
                "summary": "List users",
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/model.PublicUser"}}}}
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["user"],
                "summary": "Register",
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/handler.RegisterRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.UserResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            },
            "patch": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["user"],
                "summary": "Update the caller's account",
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/handler.UpdateUserRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.MessageResponse"}}}
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["user"],
                "summary": "Delete the caller's account",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.MessageResponse"}}}
            }
        },
        "/user/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["user"],
                "summary": "Current user",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.UserResponse"}}}
            }
        },
        "/user/verify/{id}/{verificationCode}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["user"],
                "summary": "Verify email",
                "parameters": [
                    {"type": "string", "in": "path", "name": "id", "required": true},
                    {"type": "string", "in": "path", "name": "verificationCode", "required": true}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.MessageResponse"}}}
            }
        },
        "/user/forgottenpassword": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["user"],
                "summary": "Request a password reset",
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/handler.ForgottenPasswordRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.MessageResponse"}}}
            }
        },
        "/user/resetpassword/{id}/{passwordResetCode}": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["user"],
                "summary": "Reset password",
                "parameters": [
                    {"type": "string", "in": "path", "name": "id", "required": true},
                    {"type": "string", "in": "path", "name": "passwordResetCode", "required": true},
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/handler.ResetPasswordRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.MessageResponse"}}}
            }
        }
    },
    "definitions": {
        "errors.ErrorResponse": {"type": "object", "properties": {"message": {"type": "string"}}},
        "handler.MessageResponse": {"type": "object", "properties": {"message": {"type": "string"}}},
        "handler.LoginRequest": {"type": "object", "required": ["email", "password"], "properties": {"email": {"type": "string"}, "password": {"type": "string"}}},
        "handler.LoginResponse": {"type": "object", "properties": {"accessToken": {"type": "string"}, "user": {"$ref": "#/definitions/model.PublicUser"}}},
        "handler.RefreshRequest": {"type": "object", "properties": {"refreshToken": {"type": "string"}}},
        "handler.RefreshResponse": {"type": "object", "properties": {"accessToken": {"type": "string"}}},
        "handler.SessionsResponse": {"type": "object", "properties": {"sessions": {"type": "array", "items": {"$ref": "#/definitions/model.Session"}}}},
        "handler.RegisterRequest": {"type": "object", "required": ["confirmPassword", "email", "firstName", "lastName", "password"], "properties": {"confirmPassword": {"type": "string"}, "email": {"type": "string"}, "firstName": {"type": "string"}, "lastName": {"type": "string"}, "password": {"type": "string"}}},
        "handler.ForgottenPasswordRequest": {"type": "object", "required": ["email"], "properties": {"email": {"type": "string"}}},
        "handler.ResetPasswordRequest": {"type": "object", "required": ["confirmPassword", "password"], "properties": {"confirmPassword": {"type": "string"}, "password": {"type": "string"}}},
        "handler.UpdateUserRequest": {"type": "object", "properties": {"confirmPassword": {"type": "string"}, "email": {"type": "string"}, "firstName": {"type": "string"}, "lastName": {"type": "string"}, "password": {"type": "string"}}},
        "handler.UserResponse": {"type": "object", "properties": {"user": {"$ref": "#/definitions/model.PublicUser"}}},
        "model.RoleGrant": {"type": "object", "properties": {"role": {"type": "string"}, "teamId": {"type": "string"}}},
        "model.PublicUser": {"type": "object", "properties": {"createdAt": {"type": "string"}, "email": {"type": "string"}, "firstName": {"type": "string"}, "id": {"type": "string"}, "lastName": {"type": "string"}, "roles": {"type": "array", "items": {"$ref": "#/definitions/model.RoleGrant"}}, "updatedAt": {"type": "string"}, "verified": {"type": "boolean"}}},
        "model.Session": {"type": "object", "properties": {"createdAt": {"type": "string"}, "id": {"type": "string"}, "updatedAt": {"type": "string"}, "userAgent": {"type": "string"}, "userId": {"type": "string"}, "valid": {"type": "boolean"}}}
    },
    "securityDefinitions": {
        "BearerAuth": {"description": "Type \"Bearer\" followed by a space and JWT token.", "type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "Bugscape API",
	Description:      "Session-based authentication and account management for the Bugscape issue tracker.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
