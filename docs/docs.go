// Package docs registra o documento OpenAPI servido em /swagger/.
// Mantido à mão a partir das anotações dos handlers, no formato do swag.
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
        "/auth/login": {
            "post": {
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "auth"
                ],
                "summary": "Autentica um usuário e retorna um JWT",
                "parameters": [
                    {
                        "description": "Credenciais",
                        "name": "login",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/domain.LoginRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Token JWT emitido",
                        "schema": {
                            "$ref": "#/definitions/domain.LoginResponse"
                        }
                    },
                    "400": {
                        "description": "Payload inválido",
                        "schema": {
                            "$ref": "#/definitions/domain.ErrorResponse"
                        }
                    },
                    "401": {
                        "description": "Credenciais inválidas",
                        "schema": {
                            "$ref": "#/definitions/domain.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/users": {
            "get": {
                "security": [
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "users"
                ],
                "summary": "Lista todos os usuários",
                "responses": {
                    "200": {
                        "description": "Lista de usuários",
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/domain.UserResponse"
                            }
                        }
                    },
                    "403": {
                        "description": "Acesso negado",
                        "schema": {
                            "$ref": "#/definitions/domain.ErrorResponse"
                        }
                    },
                    "500": {
                        "description": "Erro interno do servidor",
                        "schema": {
                            "$ref": "#/definitions/domain.ErrorResponse"
                        }
                    }
                }
            },
            "post": {
                "description": "Valida o payload, garante email único, gera o hash da senha e atribui ROLE_USER quando nenhum papel é informado.",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "users"
                ],
                "summary": "Cadastra um usuário",
                "parameters": [
                    {
                        "description": "Dados do usuário",
                        "name": "user",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/domain.UserRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Usuário criado",
                        "schema": {
                            "$ref": "#/definitions/domain.UserResponse"
                        }
                    },
                    "400": {
                        "description": "Payload inválido",
                        "schema": {
                            "$ref": "#/definitions/domain.ErrorResponse"
                        }
                    },
                    "409": {
                        "description": "Email já está em uso",
                        "schema": {
                            "$ref": "#/definitions/domain.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/users/{id}": {
            "get": {
                "security": [
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "users"
                ],
                "summary": "Obtém um usuário por ID",
                "parameters": [
                    {
                        "type": "integer",
                        "description": "ID do usuário",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Usuário encontrado",
                        "schema": {
                            "$ref": "#/definitions/domain.UserResponse"
                        }
                    },
                    "400": {
                        "description": "ID inválido",
                        "schema": {
                            "$ref": "#/definitions/domain.ErrorResponse"
                        }
                    },
                    "403": {
                        "description": "Acesso negado",
                        "schema": {
                            "$ref": "#/definitions/domain.ErrorResponse"
                        }
                    },
                    "404": {
                        "description": "Usuário não encontrado",
                        "schema": {
                            "$ref": "#/definitions/domain.ErrorResponse"
                        }
                    }
                }
            },
            "put": {
                "security": [
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "users"
                ],
                "summary": "Atualiza nome e email de um usuário",
                "parameters": [
                    {
                        "type": "integer",
                        "description": "ID do usuário",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Novos dados",
                        "name": "user",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/domain.UserUpdate"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Usuário atualizado",
                        "schema": {
                            "$ref": "#/definitions/domain.UserResponse"
                        }
                    },
                    "400": {
                        "description": "Payload inválido",
                        "schema": {
                            "$ref": "#/definitions/domain.ErrorResponse"
                        }
                    },
                    "403": {
                        "description": "Acesso negado",
                        "schema": {
                            "$ref": "#/definitions/domain.ErrorResponse"
                        }
                    },
                    "404": {
                        "description": "Usuário não encontrado",
                        "schema": {
                            "$ref": "#/definitions/domain.ErrorResponse"
                        }
                    },
                    "409": {
                        "description": "Email já está em uso",
                        "schema": {
                            "$ref": "#/definitions/domain.ErrorResponse"
                        }
                    }
                }
            },
            "delete": {
                "security": [
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "tags": [
                    "users"
                ],
                "summary": "Remove um usuário",
                "parameters": [
                    {
                        "type": "integer",
                        "description": "ID do usuário",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "204": {
                        "description": "Usuário removido"
                    },
                    "403": {
                        "description": "Acesso negado",
                        "schema": {
                            "$ref": "#/definitions/domain.ErrorResponse"
                        }
                    },
                    "404": {
                        "description": "Usuário não encontrado",
                        "schema": {
                            "$ref": "#/definitions/domain.ErrorResponse"
                        }
                    },
                    "409": {
                        "description": "Usuário possui cartões",
                        "schema": {
                            "$ref": "#/definitions/domain.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/credit-cards": {
            "get": {
                "security": [
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "credit-cards"
                ],
                "summary": "Lista todos os cartões",
                "responses": {
                    "200": {
                        "description": "Lista de cartões",
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/domain.CreditCardResponse"
                            }
                        }
                    },
                    "403": {
                        "description": "Acesso negado",
                        "schema": {
                            "$ref": "#/definitions/domain.ErrorResponse"
                        }
                    },
                    "500": {
                        "description": "Erro interno do servidor",
                        "schema": {
                            "$ref": "#/definitions/domain.ErrorResponse"
                        }
                    }
                }
            },
            "post": {
                "security": [
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "credit-cards"
                ],
                "summary": "Cadastra um cartão para um usuário existente",
                "parameters": [
                    {
                        "description": "Dados do cartão",
                        "name": "card",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/domain.CreditCardRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Cartão criado",
                        "schema": {
                            "$ref": "#/definitions/domain.CreditCardResponse"
                        }
                    },
                    "400": {
                        "description": "Payload inválido",
                        "schema": {
                            "$ref": "#/definitions/domain.ErrorResponse"
                        }
                    },
                    "403": {
                        "description": "Acesso negado",
                        "schema": {
                            "$ref": "#/definitions/domain.ErrorResponse"
                        }
                    },
                    "404": {
                        "description": "Usuário não encontrado",
                        "schema": {
                            "$ref": "#/definitions/domain.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/credit-cards/{id}": {
            "get": {
                "security": [
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "credit-cards"
                ],
                "summary": "Obtém um cartão por ID",
                "parameters": [
                    {
                        "type": "integer",
                        "description": "ID do cartão",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Cartão encontrado",
                        "schema": {
                            "$ref": "#/definitions/domain.CreditCardResponse"
                        }
                    },
                    "400": {
                        "description": "ID inválido",
                        "schema": {
                            "$ref": "#/definitions/domain.ErrorResponse"
                        }
                    },
                    "403": {
                        "description": "Acesso negado",
                        "schema": {
                            "$ref": "#/definitions/domain.ErrorResponse"
                        }
                    },
                    "404": {
                        "description": "Cartão não encontrado",
                        "schema": {
                            "$ref": "#/definitions/domain.ErrorResponse"
                        }
                    }
                }
            },
            "put": {
                "security": [
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "credit-cards"
                ],
                "summary": "Atualiza nome, limite, fechamento e vencimento de um cartão",
                "parameters": [
                    {
                        "type": "integer",
                        "description": "ID do cartão",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Novos dados",
                        "name": "card",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/domain.CreditCardUpdate"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Cartão atualizado",
                        "schema": {
                            "$ref": "#/definitions/domain.CreditCardResponse"
                        }
                    },
                    "400": {
                        "description": "Payload inválido",
                        "schema": {
                            "$ref": "#/definitions/domain.ErrorResponse"
                        }
                    },
                    "403": {
                        "description": "Acesso negado",
                        "schema": {
                            "$ref": "#/definitions/domain.ErrorResponse"
                        }
                    },
                    "404": {
                        "description": "Cartão não encontrado",
                        "schema": {
                            "$ref": "#/definitions/domain.ErrorResponse"
                        }
                    }
                }
            },
            "delete": {
                "security": [
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "tags": [
                    "credit-cards"
                ],
                "summary": "Remove um cartão",
                "parameters": [
                    {
                        "type": "integer",
                        "description": "ID do cartão",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "204": {
                        "description": "Cartão removido"
                    },
                    "403": {
                        "description": "Acesso negado",
                        "schema": {
                            "$ref": "#/definitions/domain.ErrorResponse"
                        }
                    },
                    "404": {
                        "description": "Cartão não encontrado",
                        "schema": {
                            "$ref": "#/definitions/domain.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/ping": {
            "get": {
                "produces": [
                    "text/plain"
                ],
                "tags": [
                    "health"
                ],
                "summary": "Verifica se a API está no ar",
                "responses": {
                    "200": {
                        "description": "pong",
                        "schema": {
                            "type": "string"
                        }
                    }
                }
            }
        },
        "/health": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "health"
                ],
                "summary": "Liveness",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/health.Status"
                        }
                    }
                }
            }
        },
        "/health/ready": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "health"
                ],
                "summary": "Readiness (Postgres e Redis)",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/health.Status"
                        }
                    },
                    "503": {
                        "description": "Service Unavailable",
                        "schema": {
                            "$ref": "#/definitions/health.Status"
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "domain.CreditCardRequest": {
            "description": "Payload de criação de cartão de crédito.",
            "type": "object",
            "required": [
                "closingDay",
                "creditLimit",
                "currentBalance",
                "dueDay",
                "name",
                "userId"
            ],
            "properties": {
                "closingDay": {
                    "type": "integer",
                    "maximum": 31,
                    "minimum": 1,
                    "example": 5
                },
                "creditLimit": {
                    "type": "number",
                    "example": 1000,
                    "minimum": 0,
                    "maximum": 9999999999999.99,
                    "multipleOf": 0.01
                },
                "currentBalance": {
                    "type": "number",
                    "example": 0,
                    "minimum": 0,
                    "maximum": 9999999999999.99,
                    "multipleOf": 0.01
                },
                "dueDay": {
                    "type": "integer",
                    "maximum": 31,
                    "minimum": 1,
                    "example": 15
                },
                "name": {
                    "type": "string",
                    "maxLength": 50,
                    "example": "Visa"
                },
                "userId": {
                    "type": "integer",
                    "example": 1
                }
            }
        },
        "domain.CreditCardResponse": {
            "description": "Cartão de crédito retornado pela API.",
            "type": "object",
            "properties": {
                "closingDay": {
                    "type": "integer",
                    "example": 5
                },
                "creditLimit": {
                    "type": "number",
                    "example": 1000
                },
                "currentBalance": {
                    "type": "number",
                    "example": 0
                },
                "dueDay": {
                    "type": "integer",
                    "example": 15
                },
                "id": {
                    "type": "integer",
                    "example": 1
                },
                "name": {
                    "type": "string",
                    "example": "Visa"
                },
                "userId": {
                    "type": "integer",
                    "example": 1
                }
            }
        },
        "domain.CreditCardUpdate": {
            "description": "Payload de atualização de cartão de crédito.",
            "type": "object",
            "required": [
                "closingDay",
                "creditLimit",
                "dueDay",
                "name"
            ],
            "properties": {
                "closingDay": {
                    "type": "integer",
                    "maximum": 31,
                    "minimum": 1,
                    "example": 10
                },
                "creditLimit": {
                    "type": "number",
                    "example": 2500.5,
                    "minimum": 0,
                    "maximum": 9999999999999.99,
                    "multipleOf": 0.01
                },
                "dueDay": {
                    "type": "integer",
                    "maximum": 31,
                    "minimum": 1,
                    "example": 20
                },
                "name": {
                    "type": "string",
                    "maxLength": 50,
                    "example": "Visa Platinum"
                }
            }
        },
        "domain.ErrorResponse": {
            "type": "object",
            "properties": {
                "category": {
                    "type": "string",
                    "example": "VALIDATION_ERROR"
                },
                "code": {
                    "type": "integer",
                    "example": 400
                },
                "fields": {
                    "type": "object",
                    "additionalProperties": {
                        "type": "array",
                        "items": {
                            "type": "string"
                        }
                    }
                },
                "message": {
                    "type": "string"
                }
            }
        },
        "domain.LoginRequest": {
            "description": "Credenciais de login.",
            "type": "object",
            "required": [
                "email",
                "password"
            ],
            "properties": {
                "email": {
                    "type": "string",
                    "example": "ana@x.com"
                },
                "password": {
                    "type": "string",
                    "example": "longenough"
                }
            }
        },
        "domain.LoginResponse": {
            "description": "Token de acesso.",
            "type": "object",
            "properties": {
                "token": {
                    "type": "string"
                }
            }
        },
        "domain.UserRequest": {
            "description": "Payload de criação de usuário.",
            "type": "object",
            "required": [
                "email",
                "name",
                "password"
            ],
            "properties": {
                "email": {
                    "type": "string",
                    "maxLength": 60,
                    "example": "ana@x.com"
                },
                "name": {
                    "type": "string",
                    "maxLength": 50,
                    "example": "Ana"
                },
                "password": {
                    "type": "string",
                    "minLength": 8,
                    "example": "longenough",
                    "maxLength": 72
                },
                "roles": {
                    "type": "array",
                    "items": {
                        "type": "string",
                        "enum": [
                            "ROLE_USER",
                            "ROLE_ADMIN"
                        ]
                    }
                }
            }
        },
        "domain.UserResponse": {
            "description": "Usuário retornado pela API.",
            "type": "object",
            "properties": {
                "email": {
                    "type": "string",
                    "example": "ana@x.com"
                },
                "id": {
                    "type": "integer",
                    "example": 1
                },
                "name": {
                    "type": "string",
                    "example": "Ana"
                },
                "roles": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                }
            }
        },
        "domain.UserUpdate": {
            "description": "Payload de atualização de usuário.",
            "type": "object",
            "required": [
                "email",
                "name"
            ],
            "properties": {
                "email": {
                    "type": "string",
                    "maxLength": 60,
                    "example": "ana.maria@x.com"
                },
                "name": {
                    "type": "string",
                    "maxLength": 50,
                    "example": "Ana Maria"
                }
            }
        },
        "health.Status": {
            "type": "object",
            "properties": {
                "checks": {
                    "type": "object",
                    "additionalProperties": {
                        "type": "string"
                    }
                },
                "status": {
                    "type": "string"
                }
            }
        }
    },
    "securityDefinitions": {
        "ApiKeyAuth": {
            "description": "Informe \"Bearer {token}\"",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "FinanceTracker API",
	Description:      "API de finanças pessoais: usuários e cartões de crédito.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
