// Package docs registers the StockTrack API swagger spec with swag. Keep it in
// step with the handler annotations.
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
        "/events": {
            "get": {
                "description": "Server-sent events; one \"state\" event per view state change",
                "produces": ["text/event-stream"],
                "tags": ["view"],
                "summary": "Stream view state",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.ViewState"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/holdings": {
            "post": {
                "description": "Append the displayed quote to the active portfolio",
                "produces": ["application/json"],
                "tags": ["holdings"],
                "summary": "Add the displayed quote",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.ActionResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/holdings/reorder": {
            "post": {
                "description": "Move the dragged holding to the target holding's position",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["holdings"],
                "summary": "Reorder holdings",
                "parameters": [
                    {"description": "Dragged and target symbols", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.ReorderRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.ActionResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/holdings/{symbol}": {
            "delete": {
                "produces": ["application/json"],
                "tags": ["holdings"],
                "summary": "Remove a holding",
                "parameters": [
                    {"type": "string", "description": "Ticker symbol", "name": "symbol", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.ActionResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/input": {
            "put": {
                "description": "Set the search text; suggestions follow after a quiet period",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["view"],
                "summary": "Update the symbol input",
                "parameters": [
                    {"description": "Symbol input", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.SymbolInputRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.ActionResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/portfolios": {
            "post": {
                "description": "Create an empty portfolio and make it active. An empty name uses the create-form name.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["portfolios"],
                "summary": "Create a portfolio",
                "parameters": [
                    {"description": "Portfolio name", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.CreatePortfolioRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.ActionResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/portfolios/active": {
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["portfolios"],
                "summary": "Select the active portfolio",
                "parameters": [
                    {"description": "Portfolio ID", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.SelectPortfolioRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.ActionResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/portfolios/form": {
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["portfolios"],
                "summary": "Update the create-portfolio form",
                "parameters": [
                    {"description": "Form state", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.CreateFormRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.ActionResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/portfolios/{id}": {
            "delete": {
                "description": "Delete a portfolio. The last remaining portfolio cannot be deleted.",
                "produces": ["application/json"],
                "tags": ["portfolios"],
                "summary": "Delete a portfolio",
                "parameters": [
                    {"type": "string", "description": "Portfolio ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.ActionResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/quote": {
            "post": {
                "description": "Look up the live quote for the current symbol input",
                "produces": ["application/json"],
                "tags": ["view"],
                "summary": "Fetch a quote",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.ActionResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/session": {
            "post": {
                "description": "Resume the identity behind a presented bearer token, or sign in anonymously",
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Start a session",
                "parameters": [
                    {"type": "string", "description": "Bearer session token", "name": "Authorization", "in": "header"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.SessionResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/state": {
            "get": {
                "description": "Get the caller's full view state",
                "produces": ["application/json"],
                "tags": ["view"],
                "summary": "Get view state",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.ViewState"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/suggestions/dismiss": {
            "post": {
                "produces": ["application/json"],
                "tags": ["view"],
                "summary": "Hide suggestions",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.ActionResponse"}}
                }
            }
        },
        "/suggestions/select": {
            "post": {
                "description": "Fill the input with the chosen symbol and clear the suggestion list",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["view"],
                "summary": "Pick a suggestion",
                "parameters": [
                    {"description": "Chosen symbol", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.SelectSuggestionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.ActionResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "models.ActionResponse": {
            "type": "object",
            "properties": {
                "state": {"$ref": "#/definitions/models.ViewState"},
                "warnings": {"type": "array", "items": {"$ref": "#/definitions/models.Warning"}}
            }
        },
        "models.CreateFormRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "open": {"type": "boolean"}
            }
        },
        "models.CreatePortfolioRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"}
            }
        },
        "models.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "models.Holding": {
            "type": "object",
            "properties": {
                "change": {"type": "string"},
                "changePercent": {"type": "string"},
                "companyName": {"type": "string"},
                "dividendYield": {"type": "string"},
                "high": {"type": "string"},
                "lastTradingDay": {"type": "string"},
                "lastUpdated": {"type": "string"},
                "low": {"type": "string"},
                "open": {"type": "string"},
                "peRatio": {"type": "string"},
                "price": {"type": "string"},
                "symbol": {"type": "string"},
                "volume": {"type": "string"}
            }
        },
        "models.Portfolio": {
            "type": "object",
            "properties": {
                "createdAt": {"type": "string"},
                "id": {"type": "string"},
                "name": {"type": "string"},
                "rev": {"type": "integer"},
                "stocks": {"type": "array", "items": {"$ref": "#/definitions/models.Holding"}}
            }
        },
        "models.Quote": {
            "type": "object",
            "properties": {
                "change": {"type": "string"},
                "changePercent": {"type": "string"},
                "companyName": {"type": "string"},
                "dividendYield": {"type": "string"},
                "high": {"type": "string"},
                "lastTradingDay": {"type": "string"},
                "lastUpdated": {"type": "string"},
                "low": {"type": "string"},
                "open": {"type": "string"},
                "peRatio": {"type": "string"},
                "placeholders": {"type": "array", "items": {"type": "string"}},
                "price": {"type": "string"},
                "symbol": {"type": "string"},
                "volume": {"type": "string"}
            }
        },
        "models.ReorderRequest": {
            "type": "object",
            "required": ["dragged", "target"],
            "properties": {
                "dragged": {"type": "string"},
                "target": {"type": "string"}
            }
        },
        "models.SelectPortfolioRequest": {
            "type": "object",
            "required": ["id"],
            "properties": {
                "id": {"type": "string"}
            }
        },
        "models.SelectSuggestionRequest": {
            "type": "object",
            "required": ["symbol"],
            "properties": {
                "symbol": {"type": "string"}
            }
        },
        "models.SessionResponse": {
            "type": "object",
            "properties": {
                "anonymous": {"type": "boolean"},
                "token": {"type": "string"},
                "user_id": {"type": "string"}
            }
        },
        "models.Suggestion": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "symbol": {"type": "string"}
            }
        },
        "models.SymbolInputRequest": {
            "type": "object",
            "properties": {
                "symbol": {"type": "string"}
            }
        },
        "models.ViewState": {
            "type": "object",
            "properties": {
                "active_portfolio_id": {"type": "string"},
                "bootstrap_error": {"type": "string"},
                "error": {"type": "string"},
                "fetching_quote": {"type": "boolean"},
                "new_portfolio_name": {"type": "string"},
                "portfolio_busy": {"type": "boolean"},
                "portfolios": {"type": "array", "items": {"$ref": "#/definitions/models.Portfolio"}},
                "quote": {"$ref": "#/definitions/models.Quote"},
                "show_create_form": {"type": "boolean"},
                "show_suggestions": {"type": "boolean"},
                "store_error": {"type": "string"},
                "store_ready": {"type": "boolean"},
                "suggestions": {"type": "array", "items": {"$ref": "#/definitions/models.Suggestion"}},
                "symbol_input": {"type": "string"},
                "user_id": {"type": "string"}
            }
        },
        "models.Warning": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "StockTrack API",
	Description:      "Stock lookup and portfolio tracking with server-sent view state.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
