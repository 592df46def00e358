// Package docs holds the swagger document served under /swagger.
// Regenerate with: swag init -g cmd/ledger_api/main.go -o cmd/docs
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
        "/accounts": {
            "get": {
                "description": "Lists the chart of accounts ordered by code, optionally filtered by type",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "accounts"
                ],
                "summary": "List accounts",
                "parameters": [
                    {
                        "enum": [
                            "ASSET",
                            "LIABILITY",
                            "EQUITY",
                            "REVENUE",
                            "COGS",
                            "EXPENSE"
                        ],
                        "type": "string",
                        "description": "Account type",
                        "name": "type",
                        "in": "query"
                    },
                    {
                        "type": "boolean",
                        "description": "Include inactive accounts",
                        "name": "includeInactive",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/dto.AccountResponse"
                            }
                        }
                    },
                    "400": {
                        "description": "Invalid query parameters",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "500": {
                        "description": "Failed to list accounts",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            },
            "post": {
                "description": "Creates an account. A non-zero opening balance is posted against opening balance equity.",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "accounts"
                ],
                "summary": "Create a new account",
                "parameters": [
                    {
                        "description": "Account details",
                        "name": "account",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/dto.CreateAccountRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/dto.AccountResponse"
                        }
                    },
                    "400": {
                        "description": "Invalid input format or validation error",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "500": {
                        "description": "Failed to create account",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            }
        },
        "/accounts/code/{code}": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "accounts"
                ],
                "summary": "Get an account by code",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Account code",
                        "name": "code",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/dto.AccountResponse"
                        }
                    },
                    "404": {
                        "description": "Account not found",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "500": {
                        "description": "Failed to retrieve account",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            }
        },
        "/accounts/seed": {
            "post": {
                "description": "Creates every missing account of the default chart and returns the ones created",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "accounts"
                ],
                "summary": "Seed the default chart of accounts",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/dto.AccountResponse"
                            }
                        }
                    },
                    "500": {
                        "description": "Failed to seed chart",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            }
        },
        "/accounts/{id}": {
            "get": {
                "description": "Retrieves details for a specific account by its ID",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "accounts"
                ],
                "summary": "Get an account by ID",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Account ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/dto.AccountResponse"
                        }
                    },
                    "404": {
                        "description": "Account not found",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "500": {
                        "description": "Failed to retrieve account",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            },
            "put": {
                "description": "Updates an account's name, description and classification flags",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "accounts"
                ],
                "summary": "Update an account",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Account ID to update",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Account details to update",
                        "name": "account",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/dto.UpdateAccountRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/dto.AccountResponse"
                        }
                    },
                    "400": {
                        "description": "Invalid input",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "404": {
                        "description": "Account not found",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "500": {
                        "description": "Failed to update account",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            },
            "delete": {
                "description": "Removes an account that no journal entry references",
                "tags": [
                    "accounts"
                ],
                "summary": "Delete an account",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Account ID to delete",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "404": {
                        "description": "Account not found",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "409": {
                        "description": "Account has journal history",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "500": {
                        "description": "Failed to delete account",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            }
        },
        "/accounts/{id}/activate": {
            "post": {
                "tags": [
                    "accounts"
                ],
                "summary": "Activate an account",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Account ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "404": {
                        "description": "Account not found",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "500": {
                        "description": "Failed to activate account",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            }
        },
        "/accounts/{id}/balance": {
            "get": {
                "description": "Returns the cached balance, or the replayed balance as of a date when asOf is given",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "accounts"
                ],
                "summary": "Get account balance",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Account ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Cutoff date (YYYY-MM-DD, inclusive)",
                        "name": "asOf",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/dto.AccountBalanceResponse"
                        }
                    },
                    "400": {
                        "description": "Invalid date",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "404": {
                        "description": "Account not found",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "500": {
                        "description": "Failed to calculate balance",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            }
        },
        "/accounts/{id}/deactivate": {
            "post": {
                "description": "Marks an account inactive. Its history is kept.",
                "tags": [
                    "accounts"
                ],
                "summary": "Deactivate an account",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Account ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "404": {
                        "description": "Account not found",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "500": {
                        "description": "Failed to deactivate account",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            }
        },
        "/counterparties/{id}": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "subledger"
                ],
                "summary": "Get a counterparty with its outstanding balance",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Counterparty ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/dto.CounterpartyResponse"
                        }
                    },
                    "404": {
                        "description": "Counterparty not found",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "500": {
                        "description": "Failed to retrieve counterparty",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            },
            "delete": {
                "description": "Removes a counterparty that no invoice references",
                "tags": [
                    "subledger"
                ],
                "summary": "Delete a counterparty",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Counterparty ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "404": {
                        "description": "Counterparty not found",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "409": {
                        "description": "Counterparty has invoices",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "500": {
                        "description": "Failed to delete counterparty",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            }
        },
        "/customers": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "subledger"
                ],
                "summary": "List customers or vendors",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/domain.Counterparty"
                            }
                        }
                    },
                    "500": {
                        "description": "Failed to list counterparties",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            },
            "post": {
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "subledger"
                ],
                "summary": "Create a customer or vendor",
                "parameters": [
                    {
                        "description": "Counterparty details",
                        "name": "counterparty",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/dto.CreateCounterpartyRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/domain.Counterparty"
                        }
                    },
                    "400": {
                        "description": "Invalid input",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "500": {
                        "description": "Failed to create counterparty",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            }
        },
        "/invoices": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "subledger"
                ],
                "summary": "List invoices",
                "parameters": [
                    {
                        "enum": [
                            "SALE",
                            "PURCHASE"
                        ],
                        "type": "string",
                        "description": "Invoice type",
                        "name": "type",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Invoice status",
                        "name": "status",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Counterparty ID",
                        "name": "counterpartyID",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/domain.Invoice"
                            }
                        }
                    },
                    "400": {
                        "description": "Invalid query parameters",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "500": {
                        "description": "Failed to list invoices",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            },
            "post": {
                "description": "Creates a draft, or an issued invoice posted to the journal in the same transaction",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "subledger"
                ],
                "summary": "Create an invoice",
                "parameters": [
                    {
                        "description": "Invoice",
                        "name": "invoice",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/dto.CreateInvoiceRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/domain.Invoice"
                        }
                    },
                    "400": {
                        "description": "Invalid input",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "404": {
                        "description": "Counterparty or tax rate not found",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "500": {
                        "description": "Failed to create invoice",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            }
        },
        "/invoices/{id}": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "subledger"
                ],
                "summary": "Get an invoice",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Invoice ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/domain.Invoice"
                        }
                    },
                    "404": {
                        "description": "Invoice not found",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "500": {
                        "description": "Failed to retrieve invoice",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            },
            "delete": {
                "tags": [
                    "subledger"
                ],
                "summary": "Delete an unpaid invoice",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Invoice ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "404": {
                        "description": "Invoice not found",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "409": {
                        "description": "Invoice has payments",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "500": {
                        "description": "Failed to delete invoice",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            }
        },
        "/invoices/{id}/cancel": {
            "post": {
                "description": "Reverses the invoice posting and marks it cancelled",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "subledger"
                ],
                "summary": "Cancel an unpaid invoice",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Invoice ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Cancellation reason",
                        "name": "reversal",
                        "in": "body",
                        "schema": {
                            "$ref": "#/definitions/dto.ReverseJournalRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/domain.Invoice"
                        }
                    },
                    "404": {
                        "description": "Invoice not found",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "409": {
                        "description": "Invoice has payments or is already cancelled",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "500": {
                        "description": "Failed to cancel invoice",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            }
        },
        "/invoices/{id}/issue": {
            "post": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "subledger"
                ],
                "summary": "Issue a draft invoice",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Invoice ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/domain.Invoice"
                        }
                    },
                    "404": {
                        "description": "Invoice not found",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "409": {
                        "description": "Invoice is not a draft",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "500": {
                        "description": "Failed to issue invoice",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            }
        },
        "/invoices/{id}/payments": {
            "get": {
                "description": "Lists the payments of one invoice in recording order",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "subledger"
                ],
                "summary": "List the payments of an invoice",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Invoice ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/domain.Payment"
                            }
                        }
                    },
                    "404": {
                        "description": "Invoice not found",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "500": {
                        "description": "Failed to list payments",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            }
        },
        "/journal-entries": {
            "get": {
                "description": "Lists entries in date then sequence order, or every entry tagged with a reference",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "journal"
                ],
                "summary": "List journal entries",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Business event id",
                        "name": "reference",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "default": 20,
                        "description": "Page size",
                        "name": "limit",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Token from the previous page",
                        "name": "nextToken",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/dto.ListEntriesResponse"
                        }
                    },
                    "400": {
                        "description": "Invalid query parameters",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "500": {
                        "description": "Failed to list journal entries",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            },
            "post": {
                "description": "Validates and posts a balanced entry, updating cached balances atomically",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "journal"
                ],
                "summary": "Post a manual journal entry",
                "parameters": [
                    {
                        "description": "Journal entry",
                        "name": "entry",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/dto.CreateJournalRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/dto.JournalEntryResponse"
                        }
                    },
                    "400": {
                        "description": "Invalid or unbalanced entry",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "404": {
                        "description": "Unknown account",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "500": {
                        "description": "Failed to post journal entry",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            }
        },
        "/journal-entries/{id}": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "journal"
                ],
                "summary": "Get a journal entry",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Entry ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/dto.JournalEntryResponse"
                        }
                    },
                    "404": {
                        "description": "Journal entry not found",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "500": {
                        "description": "Failed to retrieve journal entry",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            }
        },
        "/journal-entries/{id}/reverse": {
            "post": {
                "description": "Posts the mirror image of an entry and flags the original as reversed",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "journal"
                ],
                "summary": "Reverse a journal entry",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Entry ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Reversal reason",
                        "name": "reversal",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/dto.ReverseJournalRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/dto.JournalEntryResponse"
                        }
                    },
                    "400": {
                        "description": "Invalid input",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "404": {
                        "description": "Journal entry not found",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "409": {
                        "description": "Entry already reversed or is a reversal",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "500": {
                        "description": "Failed to reverse journal entry",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            }
        },
        "/ledger/rebuild": {
            "post": {
                "description": "Overwrites cached balances with a full replay and reports what changed",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "ledger"
                ],
                "summary": "Rebuild cached balances",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/domain.CacheVerification"
                        }
                    },
                    "500": {
                        "description": "Failed to rebuild balances",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            }
        },
        "/ledger/snapshot": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "ledger"
                ],
                "summary": "Export the ledger state",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/domain.Snapshot"
                        }
                    },
                    "500": {
                        "description": "Failed to export snapshot",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            },
            "post": {
                "description": "Writes the current state to the configured snapshot repository",
                "tags": [
                    "ledger"
                ],
                "summary": "Persist a snapshot",
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "500": {
                        "description": "Failed to save snapshot",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            }
        },
        "/ledger/snapshot/restore": {
            "post": {
                "description": "Replaces the in-memory state with the latest persisted snapshot",
                "tags": [
                    "ledger"
                ],
                "summary": "Restore the latest snapshot",
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "404": {
                        "description": "No snapshot stored",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "500": {
                        "description": "Failed to restore snapshot",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            }
        },
        "/ledger/verify": {
            "get": {
                "description": "Compares every cached balance with a full replay of the journal",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "ledger"
                ],
                "summary": "Verify cached balances",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/domain.CacheVerification"
                        }
                    },
                    "500": {
                        "description": "Failed to verify balances",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            }
        },
        "/payments": {
            "get": {
                "description": "Lists every payment, or the payments of one invoice",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "subledger"
                ],
                "summary": "List payments",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Invoice ID",
                        "name": "invoiceID",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/domain.Payment"
                            }
                        }
                    },
                    "404": {
                        "description": "Invoice not found",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "500": {
                        "description": "Failed to list payments",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            },
            "post": {
                "description": "Posts the settlement entry and updates the invoice's paid amount and status",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "subledger"
                ],
                "summary": "Record a payment against an invoice",
                "parameters": [
                    {
                        "description": "Payment",
                        "name": "payment",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/dto.RecordPaymentRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/domain.Payment"
                        }
                    },
                    "400": {
                        "description": "Invalid input or overpayment",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "404": {
                        "description": "Invoice not found",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "409": {
                        "description": "Invoice is not open",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "500": {
                        "description": "Failed to record payment",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            }
        },
        "/purchases": {
            "post": {
                "description": "Posts one automatic entry for a paid purchase or one owed to a vendor",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "journal"
                ],
                "summary": "Record a purchase",
                "parameters": [
                    {
                        "description": "Purchase",
                        "name": "purchase",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/dto.RecordPurchaseRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/dto.JournalEntryResponse"
                        }
                    },
                    "400": {
                        "description": "Invalid input",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "500": {
                        "description": "Failed to record purchase",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            }
        },
        "/reports/aging": {
            "get": {
                "description": "Buckets unpaid invoices by days past due",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "reports"
                ],
                "summary": "Generate aging report",
                "parameters": [
                    {
                        "type": "string",
                        "description": "SALE, PURCHASE, receivable or payable",
                        "name": "type",
                        "in": "query",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Report date (YYYY-MM-DD); defaults to today",
                        "name": "asOf",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/domain.AgingReport"
                        }
                    },
                    "400": {
                        "description": "Invalid input",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "500": {
                        "description": "Failed to generate report",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            }
        },
        "/reports/balance-sheet": {
            "get": {
                "description": "Generates a balance sheet as of a specific date, including unclosed earnings in equity",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "reports"
                ],
                "summary": "Generate balance sheet report",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Report date (YYYY-MM-DD, inclusive); defaults to now",
                        "name": "asOf",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/domain.BalanceSheetReport"
                        }
                    },
                    "400": {
                        "description": "Invalid input",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "500": {
                        "description": "Failed to generate report",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            }
        },
        "/reports/cash-flow": {
            "get": {
                "description": "Indirect-method cash flow statement for a period",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "reports"
                ],
                "summary": "Generate cash flow statement",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Start date (YYYY-MM-DD); defaults to the first of the month",
                        "name": "startDate",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "End date (YYYY-MM-DD, inclusive); defaults to today",
                        "name": "endDate",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/domain.CashFlowStatement"
                        }
                    },
                    "400": {
                        "description": "Invalid input",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "500": {
                        "description": "Failed to generate report",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            }
        },
        "/reports/general-ledger": {
            "get": {
                "description": "Running-balance view of one account, or every active account, over a window",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "reports"
                ],
                "summary": "Generate general ledger",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Account ID; all active accounts when empty",
                        "name": "accountID",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Start date (YYYY-MM-DD)",
                        "name": "startDate",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "End date (YYYY-MM-DD, inclusive)",
                        "name": "endDate",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/domain.AccountLedger"
                            }
                        }
                    },
                    "400": {
                        "description": "Invalid input",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "404": {
                        "description": "Account not found",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "500": {
                        "description": "Failed to generate report",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            }
        },
        "/reports/income-statement": {
            "get": {
                "description": "Revenue, COGS and expense activity for a period",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "reports"
                ],
                "summary": "Generate income statement",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Start date (YYYY-MM-DD); defaults to the first of the month",
                        "name": "startDate",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "End date (YYYY-MM-DD, inclusive); defaults to today",
                        "name": "endDate",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/domain.IncomeStatement"
                        }
                    },
                    "400": {
                        "description": "Invalid input",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "500": {
                        "description": "Failed to generate report",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            }
        },
        "/reports/tax": {
            "get": {
                "description": "Tax collected on sales within a period",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "reports"
                ],
                "summary": "Generate tax report",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Start date (YYYY-MM-DD); defaults to the first of the month",
                        "name": "startDate",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "End date (YYYY-MM-DD, inclusive); defaults to today",
                        "name": "endDate",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/domain.TaxReport"
                        }
                    },
                    "400": {
                        "description": "Invalid input",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "500": {
                        "description": "Failed to generate report",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            }
        },
        "/reports/trial-balance": {
            "get": {
                "description": "Generates a trial balance report as of a specific date",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "reports"
                ],
                "summary": "Generate trial balance report",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Report date (YYYY-MM-DD, inclusive); defaults to now",
                        "name": "asOf",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/domain.TrialBalanceReport"
                        }
                    },
                    "400": {
                        "description": "Invalid input",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "500": {
                        "description": "Failed to generate report",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            }
        },
        "/sales": {
            "post": {
                "description": "Posts one automatic entry for a cash or bank sale, relieving inventory when COGS is given",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "journal"
                ],
                "summary": "Record a settled sale",
                "parameters": [
                    {
                        "description": "Sale",
                        "name": "sale",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/dto.RecordSaleRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/dto.JournalEntryResponse"
                        }
                    },
                    "400": {
                        "description": "Invalid input",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "500": {
                        "description": "Failed to record sale",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            }
        },
        "/tax/compute": {
            "post": {
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "tax"
                ],
                "summary": "Compute the tax split of an amount",
                "parameters": [
                    {
                        "description": "Amount and optional rate",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/dto.ComputeTaxRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/domain.TaxBreakdown"
                        }
                    },
                    "400": {
                        "description": "Invalid input",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "404": {
                        "description": "Tax rate not found",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "500": {
                        "description": "Failed to compute tax",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            }
        },
        "/tax/rates": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "tax"
                ],
                "summary": "List tax rates",
                "parameters": [
                    {
                        "type": "boolean",
                        "description": "Only active rates",
                        "name": "activeOnly",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/domain.TaxRate"
                            }
                        }
                    },
                    "500": {
                        "description": "Failed to list tax rates",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            },
            "post": {
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "tax"
                ],
                "summary": "Create a tax rate",
                "parameters": [
                    {
                        "description": "Tax rate",
                        "name": "rate",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/dto.CreateTaxRateRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/domain.TaxRate"
                        }
                    },
                    "400": {
                        "description": "Invalid input",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "500": {
                        "description": "Failed to create tax rate",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            }
        },
        "/tax/rates/{id}/deactivate": {
            "post": {
                "tags": [
                    "tax"
                ],
                "summary": "Deactivate a tax rate",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Tax rate ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "404": {
                        "description": "Tax rate not found",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "500": {
                        "description": "Failed to deactivate tax rate",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            }
        },
        "/tax/settings": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "tax"
                ],
                "summary": "Get tax settings",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/domain.TaxSettings"
                        }
                    },
                    "500": {
                        "description": "Failed to retrieve tax settings",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            },
            "put": {
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "tax"
                ],
                "summary": "Update tax settings",
                "parameters": [
                    {
                        "description": "Tax settings",
                        "name": "settings",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/dto.UpdateTaxSettingsRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/domain.TaxSettings"
                        }
                    },
                    "400": {
                        "description": "Invalid input",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "500": {
                        "description": "Failed to update tax settings",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            }
        },
        "/vendors": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "subledger"
                ],
                "summary": "List customers or vendors",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/domain.Counterparty"
                            }
                        }
                    },
                    "500": {
                        "description": "Failed to list counterparties",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            },
            "post": {
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "subledger"
                ],
                "summary": "Create a customer or vendor",
                "parameters": [
                    {
                        "description": "Counterparty details",
                        "name": "counterparty",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/dto.CreateCounterpartyRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/domain.Counterparty"
                        }
                    },
                    "400": {
                        "description": "Invalid input",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "500": {
                        "description": "Failed to create counterparty",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "domain.Account": {
            "type": "object",
            "properties": {
                "accountID": {
                    "type": "string"
                },
                "accountType": {
                    "$ref": "#/definitions/domain.AccountType"
                },
                "balance": {
                    "type": "string"
                },
                "code": {
                    "description": "Natural business key, e.g. \"1-101\"",
                    "type": "string"
                },
                "createdAt": {
                    "type": "string"
                },
                "description": {
                    "type": "string"
                },
                "isActive": {
                    "description": "Soft delete flag",
                    "type": "boolean"
                },
                "isCash": {
                    "description": "Counted as cash in the cash flow statement",
                    "type": "boolean"
                },
                "isCurrent": {
                    "description": "Current vs non-current on the balance sheet",
                    "type": "boolean"
                },
                "lastUpdatedAt": {
                    "type": "string"
                },
                "name": {
                    "type": "string"
                }
            }
        },
        "domain.AccountAmount": {
            "type": "object",
            "properties": {
                "accountID": {
                    "type": "string"
                },
                "amount": {
                    "type": "string"
                },
                "code": {
                    "type": "string"
                },
                "name": {
                    "type": "string"
                }
            }
        },
        "domain.AccountLedger": {
            "type": "object",
            "properties": {
                "accountID": {
                    "type": "string"
                },
                "accountType": {
                    "$ref": "#/definitions/domain.AccountType"
                },
                "closingBalance": {
                    "type": "string"
                },
                "code": {
                    "type": "string"
                },
                "lines": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/domain.LedgerLine"
                    }
                },
                "name": {
                    "type": "string"
                },
                "openingBalance": {
                    "type": "string"
                },
                "totalCredit": {
                    "type": "string"
                },
                "totalDebit": {
                    "type": "string"
                }
            }
        },
        "domain.AccountType": {
            "type": "string",
            "enum": [
                "ASSET",
                "LIABILITY",
                "EQUITY",
                "REVENUE",
                "COGS",
                "EXPENSE"
            ],
            "x-enum-varnames": [
                "Asset",
                "Liability",
                "Equity",
                "Revenue",
                "COGS",
                "Expense"
            ]
        },
        "domain.AgingBucket": {
            "type": "string",
            "enum": [
                "0-30",
                "31-60",
                "61-90",
                ">90"
            ],
            "x-enum-varnames": [
                "Bucket0To30",
                "Bucket31To60",
                "Bucket61To90",
                "BucketOver90"
            ]
        },
        "domain.AgingBuckets": {
            "type": "object",
            "properties": {
                "days0To30": {
                    "type": "string"
                },
                "days31To60": {
                    "type": "string"
                },
                "days61To90": {
                    "type": "string"
                },
                "over90": {
                    "type": "string"
                }
            }
        },
        "domain.AgingLine": {
            "type": "object",
            "properties": {
                "bucket": {
                    "$ref": "#/definitions/domain.AgingBucket"
                },
                "counterpartyID": {
                    "type": "string"
                },
                "counterpartyName": {
                    "type": "string"
                },
                "daysOverdue": {
                    "type": "integer"
                },
                "dueDate": {
                    "type": "string"
                },
                "invoiceID": {
                    "type": "string"
                },
                "number": {
                    "type": "string"
                },
                "outstanding": {
                    "type": "string"
                }
            }
        },
        "domain.AgingReport": {
            "type": "object",
            "properties": {
                "asOf": {
                    "type": "string"
                },
                "buckets": {
                    "$ref": "#/definitions/domain.AgingBuckets"
                },
                "invoices": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/domain.AgingLine"
                    }
                },
                "total": {
                    "type": "string"
                },
                "type": {
                    "$ref": "#/definitions/domain.InvoiceType"
                }
            }
        },
        "domain.BalanceSheetReport": {
            "type": "object",
            "properties": {
                "asOf": {
                    "type": "string"
                },
                "balanced": {
                    "type": "boolean"
                },
                "currentAssets": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/domain.AccountAmount"
                    }
                },
                "currentLiabilities": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/domain.AccountAmount"
                    }
                },
                "equity": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/domain.AccountAmount"
                    }
                },
                "nonCurrentAssets": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/domain.AccountAmount"
                    }
                },
                "nonCurrentLiabilities": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/domain.AccountAmount"
                    }
                },
                "totalAssets": {
                    "type": "string"
                },
                "totalCurrentAssets": {
                    "type": "string"
                },
                "totalCurrentLiabilities": {
                    "type": "string"
                },
                "totalEquity": {
                    "type": "string"
                },
                "totalLiabilities": {
                    "type": "string"
                },
                "totalNonCurrentAssets": {
                    "type": "string"
                },
                "totalNonCurrentLiabilities": {
                    "type": "string"
                },
                "unclosedEarnings": {
                    "type": "string"
                },
                "warnings": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/domain.ConsistencyWarning"
                    }
                }
            }
        },
        "domain.CacheVerification": {
            "type": "object",
            "properties": {
                "checkedAccounts": {
                    "type": "integer"
                },
                "consistent": {
                    "type": "boolean"
                },
                "warnings": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/domain.ConsistencyWarning"
                    }
                }
            }
        },
        "domain.CashFlowStatement": {
            "type": "object",
            "properties": {
                "beginningCash": {
                    "type": "string"
                },
                "discrepancy": {
                    "description": "NetCashFlow - (EndingCash - BeginningCash)",
                    "type": "string"
                },
                "endDate": {
                    "type": "string"
                },
                "endingCash": {
                    "type": "string"
                },
                "financing": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/domain.AccountAmount"
                    }
                },
                "investing": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/domain.AccountAmount"
                    }
                },
                "netCashFlow": {
                    "type": "string"
                },
                "netFinancing": {
                    "type": "string"
                },
                "netIncome": {
                    "type": "string"
                },
                "netInvesting": {
                    "type": "string"
                },
                "netOperating": {
                    "type": "string"
                },
                "operatingAdjustments": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/domain.AccountAmount"
                    }
                },
                "startDate": {
                    "type": "string"
                },
                "warnings": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/domain.ConsistencyWarning"
                    }
                }
            }
        },
        "domain.ConsistencyWarning": {
            "type": "object",
            "properties": {
                "accountID": {
                    "type": "string"
                },
                "actual": {
                    "type": "string"
                },
                "code": {
                    "type": "string"
                },
                "difference": {
                    "type": "string"
                },
                "expected": {
                    "type": "string"
                },
                "message": {
                    "type": "string"
                }
            }
        },
        "domain.Counterparty": {
            "type": "object",
            "properties": {
                "address": {
                    "type": "string"
                },
                "counterpartyID": {
                    "type": "string"
                },
                "createdAt": {
                    "type": "string"
                },
                "email": {
                    "type": "string"
                },
                "kind": {
                    "$ref": "#/definitions/domain.CounterpartyKind"
                },
                "lastUpdatedAt": {
                    "type": "string"
                },
                "name": {
                    "type": "string"
                },
                "phone": {
                    "type": "string"
                },
                "taxNumber": {
                    "type": "string"
                }
            }
        },
        "domain.CounterpartyKind": {
            "type": "string",
            "enum": [
                "customer",
                "vendor"
            ],
            "x-enum-varnames": [
                "Customer",
                "Vendor"
            ]
        },
        "domain.IncomeStatement": {
            "type": "object",
            "properties": {
                "cogs": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/domain.AccountAmount"
                    }
                },
                "endDate": {
                    "type": "string"
                },
                "expenses": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/domain.AccountAmount"
                    }
                },
                "grossMargin": {
                    "description": "Percent of revenue",
                    "type": "string"
                },
                "grossProfit": {
                    "type": "string"
                },
                "netIncome": {
                    "type": "string"
                },
                "netMargin": {
                    "description": "Percent of revenue",
                    "type": "string"
                },
                "revenue": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/domain.AccountAmount"
                    }
                },
                "startDate": {
                    "type": "string"
                },
                "totalCOGS": {
                    "type": "string"
                },
                "totalExpenses": {
                    "type": "string"
                },
                "totalRevenue": {
                    "type": "string"
                }
            }
        },
        "domain.Invoice": {
            "type": "object",
            "properties": {
                "counterpartyID": {
                    "type": "string"
                },
                "createdAt": {
                    "type": "string"
                },
                "debitAccountID": {
                    "description": "Purchase invoices only",
                    "type": "string"
                },
                "dueDate": {
                    "type": "string"
                },
                "invoiceID": {
                    "type": "string"
                },
                "issueDate": {
                    "type": "string"
                },
                "items": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/domain.InvoiceItem"
                    }
                },
                "journalEntryID": {
                    "type": "string"
                },
                "lastUpdatedAt": {
                    "type": "string"
                },
                "notes": {
                    "type": "string"
                },
                "number": {
                    "type": "string"
                },
                "paidAmount": {
                    "type": "string"
                },
                "status": {
                    "$ref": "#/definitions/domain.InvoiceStatus"
                },
                "subtotal": {
                    "type": "string"
                },
                "taxAmount": {
                    "type": "string"
                },
                "taxRateID": {
                    "type": "string"
                },
                "totalAmount": {
                    "type": "string"
                },
                "type": {
                    "$ref": "#/definitions/domain.InvoiceType"
                }
            }
        },
        "domain.InvoiceItem": {
            "type": "object",
            "properties": {
                "amount": {
                    "type": "string"
                },
                "description": {
                    "type": "string"
                },
                "quantity": {
                    "type": "string"
                },
                "unitPrice": {
                    "type": "string"
                }
            }
        },
        "domain.InvoiceStatus": {
            "type": "string",
            "enum": [
                "DRAFT",
                "ISSUED",
                "PARTIALLY_PAID",
                "PAID",
                "CANCELLED"
            ],
            "x-enum-varnames": [
                "InvoiceDraft",
                "InvoiceIssued",
                "InvoicePartiallyPaid",
                "InvoicePaid",
                "InvoiceCancelled"
            ]
        },
        "domain.InvoiceType": {
            "type": "string",
            "enum": [
                "SALE",
                "PURCHASE"
            ],
            "x-enum-varnames": [
                "InvoiceSale",
                "InvoicePurchase"
            ]
        },
        "domain.JournalEntry": {
            "type": "object",
            "properties": {
                "createdAt": {
                    "type": "string"
                },
                "date": {
                    "description": "Business date",
                    "type": "string"
                },
                "description": {
                    "type": "string"
                },
                "entryID": {
                    "type": "string"
                },
                "isAutomatic": {
                    "type": "boolean"
                },
                "isReversed": {
                    "type": "boolean"
                },
                "lines": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/domain.JournalLine"
                    }
                },
                "reference": {
                    "type": "string"
                },
                "referenceType": {
                    "$ref": "#/definitions/domain.ReferenceType"
                },
                "reversalOf": {
                    "type": "string"
                },
                "reversedBy": {
                    "type": "string"
                },
                "sequence": {
                    "type": "integer"
                },
                "subtotal": {
                    "type": "string"
                },
                "taxAmount": {
                    "type": "string"
                }
            }
        },
        "domain.JournalLine": {
            "type": "object",
            "properties": {
                "accountID": {
                    "type": "string"
                },
                "credit": {
                    "type": "string"
                },
                "debit": {
                    "type": "string"
                },
                "notes": {
                    "type": "string"
                }
            }
        },
        "domain.LedgerLine": {
            "type": "object",
            "properties": {
                "balance": {
                    "description": "Running balance after this line",
                    "type": "string"
                },
                "credit": {
                    "type": "string"
                },
                "date": {
                    "type": "string"
                },
                "debit": {
                    "type": "string"
                },
                "description": {
                    "type": "string"
                },
                "entryID": {
                    "type": "string"
                },
                "reference": {
                    "type": "string"
                }
            }
        },
        "domain.Payment": {
            "type": "object",
            "properties": {
                "amount": {
                    "type": "string"
                },
                "createdAt": {
                    "type": "string"
                },
                "invoiceID": {
                    "type": "string"
                },
                "journalEntryID": {
                    "type": "string"
                },
                "method": {
                    "$ref": "#/definitions/domain.PaymentMethod"
                },
                "notes": {
                    "type": "string"
                },
                "paymentDate": {
                    "type": "string"
                },
                "paymentID": {
                    "type": "string"
                }
            }
        },
        "domain.PaymentMethod": {
            "type": "string",
            "enum": [
                "cash",
                "bank",
                "transfer",
                "card"
            ],
            "x-enum-varnames": [
                "PaymentCash",
                "PaymentBank",
                "PaymentTransfer",
                "PaymentCard"
            ]
        },
        "domain.ReferenceType": {
            "type": "string",
            "enum": [
                "purchase",
                "sale",
                "sales_invoice",
                "purchase_invoice",
                "payment",
                "adjustment",
                "opening_balance"
            ],
            "x-enum-varnames": [
                "RefPurchase",
                "RefSale",
                "RefSalesInvoice",
                "RefPurchaseInvoice",
                "RefPayment",
                "RefAdjustment",
                "RefOpeningBalance"
            ]
        },
        "domain.Snapshot": {
            "type": "object",
            "properties": {
                "accounts": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/domain.Account"
                    }
                },
                "counterparties": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/domain.Counterparty"
                    }
                },
                "invoiceSequences": {
                    "description": "InvoiceSequences is the last generated invoice number per type.",
                    "type": "object",
                    "additionalProperties": {
                        "type": "integer"
                    }
                },
                "invoices": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/domain.Invoice"
                    }
                },
                "journalEntries": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/domain.JournalEntry"
                    }
                },
                "payments": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/domain.Payment"
                    }
                },
                "takenAt": {
                    "type": "string"
                },
                "taxRates": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/domain.TaxRate"
                    }
                },
                "taxSettings": {
                    "$ref": "#/definitions/domain.TaxSettings"
                },
                "version": {
                    "type": "integer"
                }
            }
        },
        "domain.TaxBreakdown": {
            "type": "object",
            "properties": {
                "subtotal": {
                    "type": "string"
                },
                "tax": {
                    "type": "string"
                },
                "total": {
                    "type": "string"
                }
            }
        },
        "domain.TaxRate": {
            "type": "object",
            "properties": {
                "accountID": {
                    "description": "Liability account the tax is credited to",
                    "type": "string"
                },
                "createdAt": {
                    "type": "string"
                },
                "isActive": {
                    "type": "boolean"
                },
                "name": {
                    "type": "string"
                },
                "rate": {
                    "type": "string"
                },
                "taxRateID": {
                    "type": "string"
                }
            }
        },
        "domain.TaxReport": {
            "type": "object",
            "properties": {
                "endDate": {
                    "type": "string"
                },
                "nonTaxableSales": {
                    "type": "string"
                },
                "startDate": {
                    "type": "string"
                },
                "taxCollected": {
                    "type": "string"
                },
                "taxableSales": {
                    "type": "string"
                },
                "totalSales": {
                    "type": "string"
                },
                "transactions": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/domain.TaxReportLine"
                    }
                }
            }
        },
        "domain.TaxReportLine": {
            "type": "object",
            "properties": {
                "date": {
                    "type": "string"
                },
                "description": {
                    "type": "string"
                },
                "effectiveRate": {
                    "description": "TaxAmount / Subtotal",
                    "type": "string"
                },
                "entryID": {
                    "type": "string"
                },
                "reference": {
                    "type": "string"
                },
                "referenceType": {
                    "$ref": "#/definitions/domain.ReferenceType"
                },
                "subtotal": {
                    "type": "string"
                },
                "taxAmount": {
                    "type": "string"
                },
                "taxable": {
                    "type": "boolean"
                }
            }
        },
        "domain.TaxSettings": {
            "type": "object",
            "properties": {
                "defaultTaxRateID": {
                    "type": "string"
                },
                "inclusive": {
                    "type": "boolean"
                }
            }
        },
        "domain.TrialBalanceReport": {
            "type": "object",
            "properties": {
                "asOf": {
                    "type": "string"
                },
                "balanced": {
                    "type": "boolean"
                },
                "rows": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/domain.TrialBalanceRow"
                    }
                },
                "totalCredit": {
                    "type": "string"
                },
                "totalDebit": {
                    "type": "string"
                },
                "warnings": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/domain.ConsistencyWarning"
                    }
                }
            }
        },
        "domain.TrialBalanceRow": {
            "type": "object",
            "properties": {
                "accountID": {
                    "type": "string"
                },
                "accountName": {
                    "type": "string"
                },
                "accountType": {
                    "$ref": "#/definitions/domain.AccountType"
                },
                "code": {
                    "type": "string"
                },
                "credit": {
                    "type": "string"
                },
                "debit": {
                    "type": "string"
                }
            }
        },
        "dto.AccountBalanceResponse": {
            "type": "object",
            "properties": {
                "accountID": {
                    "type": "string"
                },
                "asOf": {
                    "description": "Nil for the cached current balance",
                    "type": "string"
                },
                "balance": {
                    "type": "string"
                }
            }
        },
        "dto.AccountResponse": {
            "type": "object",
            "properties": {
                "accountID": {
                    "type": "string"
                },
                "accountType": {
                    "$ref": "#/definitions/domain.AccountType"
                },
                "balance": {
                    "type": "string"
                },
                "code": {
                    "type": "string"
                },
                "createdAt": {
                    "type": "string"
                },
                "description": {
                    "type": "string"
                },
                "isActive": {
                    "type": "boolean"
                },
                "isCash": {
                    "type": "boolean"
                },
                "isCurrent": {
                    "type": "boolean"
                },
                "lastUpdatedAt": {
                    "type": "string"
                },
                "name": {
                    "type": "string"
                }
            }
        },
        "dto.ComputeTaxRequest": {
            "type": "object",
            "properties": {
                "amount": {
                    "type": "string"
                },
                "taxRateID": {
                    "description": "Defaults to the configured default rate",
                    "type": "string"
                }
            }
        },
        "dto.CounterpartyResponse": {
            "type": "object",
            "properties": {
                "address": {
                    "type": "string"
                },
                "balance": {
                    "type": "string"
                },
                "counterpartyID": {
                    "type": "string"
                },
                "createdAt": {
                    "type": "string"
                },
                "email": {
                    "type": "string"
                },
                "kind": {
                    "$ref": "#/definitions/domain.CounterpartyKind"
                },
                "lastUpdatedAt": {
                    "type": "string"
                },
                "name": {
                    "type": "string"
                },
                "phone": {
                    "type": "string"
                },
                "taxNumber": {
                    "type": "string"
                }
            }
        },
        "dto.CreateAccountRequest": {
            "type": "object",
            "required": [
                "code",
                "name",
                "accountType"
            ],
            "properties": {
                "accountType": {
                    "$ref": "#/definitions/domain.AccountType"
                },
                "code": {
                    "type": "string",
                    "maxLength": 32
                },
                "description": {
                    "type": "string"
                },
                "isCash": {
                    "type": "boolean"
                },
                "isCurrent": {
                    "type": "boolean"
                },
                "name": {
                    "type": "string",
                    "maxLength": 255
                },
                "openingBalance": {
                    "description": "Optional; posted against opening balance equity",
                    "type": "string"
                },
                "openingDate": {
                    "description": "Defaults to now",
                    "type": "string"
                }
            }
        },
        "dto.CreateCounterpartyRequest": {
            "type": "object",
            "required": [
                "name"
            ],
            "properties": {
                "address": {
                    "type": "string"
                },
                "email": {
                    "type": "string"
                },
                "name": {
                    "type": "string",
                    "maxLength": 255
                },
                "phone": {
                    "type": "string"
                },
                "taxNumber": {
                    "type": "string"
                }
            }
        },
        "dto.CreateInvoiceRequest": {
            "type": "object",
            "required": [
                "type",
                "counterpartyID",
                "issueDate",
                "dueDate"
            ],
            "properties": {
                "counterpartyID": {
                    "type": "string"
                },
                "debitAccountID": {
                    "description": "Purchase invoices; defaults to inventory",
                    "type": "string"
                },
                "draft": {
                    "description": "Drafts are not posted",
                    "type": "boolean"
                },
                "dueDate": {
                    "type": "string"
                },
                "issueDate": {
                    "type": "string"
                },
                "items": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/dto.InvoiceItemRequest"
                    }
                },
                "notes": {
                    "type": "string"
                },
                "number": {
                    "type": "string"
                },
                "subtotal": {
                    "type": "string"
                },
                "taxAmount": {
                    "type": "string"
                },
                "taxRateID": {
                    "type": "string"
                },
                "type": {
                    "$ref": "#/definitions/domain.InvoiceType"
                }
            }
        },
        "dto.CreateJournalRequest": {
            "type": "object",
            "required": [
                "date",
                "description",
                "lines"
            ],
            "properties": {
                "date": {
                    "type": "string"
                },
                "description": {
                    "type": "string"
                },
                "lines": {
                    "type": "array",
                    "minItems": 2,
                    "items": {
                        "$ref": "#/definitions/dto.JournalLineRequest"
                    }
                },
                "reference": {
                    "type": "string"
                },
                "referenceType": {
                    "$ref": "#/definitions/domain.ReferenceType"
                }
            }
        },
        "dto.CreateTaxRateRequest": {
            "type": "object",
            "required": [
                "name"
            ],
            "properties": {
                "accountID": {
                    "description": "Defaults to the tax payable account",
                    "type": "string"
                },
                "name": {
                    "type": "string"
                },
                "rate": {
                    "type": "string"
                }
            }
        },
        "dto.InvoiceItemRequest": {
            "type": "object",
            "required": [
                "description"
            ],
            "properties": {
                "description": {
                    "type": "string"
                },
                "quantity": {
                    "type": "string"
                },
                "unitPrice": {
                    "type": "string"
                }
            }
        },
        "dto.JournalEntryResponse": {
            "type": "object",
            "properties": {
                "createdAt": {
                    "type": "string"
                },
                "date": {
                    "type": "string"
                },
                "description": {
                    "type": "string"
                },
                "entryID": {
                    "type": "string"
                },
                "isAutomatic": {
                    "type": "boolean"
                },
                "isReversed": {
                    "type": "boolean"
                },
                "lines": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/dto.JournalLineResponse"
                    }
                },
                "reference": {
                    "type": "string"
                },
                "referenceType": {
                    "$ref": "#/definitions/domain.ReferenceType"
                },
                "reversalOf": {
                    "type": "string"
                },
                "reversedBy": {
                    "type": "string"
                },
                "sequence": {
                    "type": "integer"
                },
                "totalCredit": {
                    "type": "string"
                },
                "totalDebit": {
                    "type": "string"
                }
            }
        },
        "dto.JournalLineRequest": {
            "type": "object",
            "required": [
                "accountID"
            ],
            "properties": {
                "accountID": {
                    "type": "string"
                },
                "credit": {
                    "type": "string"
                },
                "debit": {
                    "type": "string"
                },
                "notes": {
                    "type": "string"
                }
            }
        },
        "dto.JournalLineResponse": {
            "type": "object",
            "properties": {
                "accountID": {
                    "type": "string"
                },
                "credit": {
                    "type": "string"
                },
                "debit": {
                    "type": "string"
                },
                "notes": {
                    "type": "string"
                }
            }
        },
        "dto.ListEntriesResponse": {
            "type": "object",
            "properties": {
                "entries": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/dto.JournalEntryResponse"
                    }
                },
                "nextToken": {
                    "type": "string"
                }
            }
        },
        "dto.RecordPaymentRequest": {
            "type": "object",
            "required": [
                "invoiceID",
                "method",
                "paymentDate"
            ],
            "properties": {
                "amount": {
                    "type": "string"
                },
                "invoiceID": {
                    "type": "string"
                },
                "method": {
                    "$ref": "#/definitions/domain.PaymentMethod"
                },
                "notes": {
                    "type": "string"
                },
                "paymentDate": {
                    "type": "string"
                }
            }
        },
        "dto.RecordPurchaseRequest": {
            "type": "object",
            "required": [
                "date"
            ],
            "properties": {
                "amount": {
                    "description": "Net of tax",
                    "type": "string"
                },
                "date": {
                    "type": "string"
                },
                "debitAccountID": {
                    "description": "Defaults to inventory",
                    "type": "string"
                },
                "description": {
                    "type": "string"
                },
                "method": {
                    "description": "Required when Paid",
                    "allOf": [
                        {
                            "$ref": "#/definitions/domain.PaymentMethod"
                        }
                    ]
                },
                "paid": {
                    "type": "boolean"
                },
                "reference": {
                    "type": "string"
                },
                "taxAmount": {
                    "type": "string"
                }
            }
        },
        "dto.RecordSaleRequest": {
            "type": "object",
            "required": [
                "method",
                "date"
            ],
            "properties": {
                "cogs": {
                    "description": "Inventory cost relieved by the sale",
                    "type": "string"
                },
                "date": {
                    "type": "string"
                },
                "description": {
                    "type": "string"
                },
                "method": {
                    "$ref": "#/definitions/domain.PaymentMethod"
                },
                "reference": {
                    "type": "string"
                },
                "subtotal": {
                    "type": "string"
                },
                "taxAmount": {
                    "type": "string"
                }
            }
        },
        "dto.ReverseJournalRequest": {
            "type": "object",
            "required": [
                "reason"
            ],
            "properties": {
                "reason": {
                    "type": "string",
                    "maxLength": 500
                }
            }
        },
        "dto.UpdateAccountRequest": {
            "type": "object",
            "properties": {
                "description": {
                    "type": "string"
                },
                "isCash": {
                    "type": "boolean"
                },
                "isCurrent": {
                    "type": "boolean"
                },
                "name": {
                    "type": "string",
                    "maxLength": 255
                }
            }
        },
        "dto.UpdateTaxSettingsRequest": {
            "type": "object",
            "properties": {
                "defaultTaxRateID": {
                    "type": "string"
                },
                "inclusive": {
                    "type": "boolean"
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Ledger Core API",
	Description:      "Double-entry ledger with journal posting, financial reports and a receivables/payables subledger.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
