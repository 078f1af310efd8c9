package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Occasion Pricing API",
        "description": "Suggested rental pricing for apparel items by season and occasion",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Pricing", "description": "Pricing report computation & export"},
        {"name": "Calendar", "description": "Occasion calendar inspection & reload"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"}
                }
            }
        },
        "/api/v1/pricing/report": {
            "post": {
                "tags": ["Pricing"],
                "summary": "Compute a pricing report",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/PricingReportRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid payload", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "No usable calendar rows", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/pricing/report/export": {
            "post": {
                "tags": ["Pricing"],
                "summary": "Compute a pricing report and export it as CSV or PDF",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ExportRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid payload", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/export/{token}": {
            "get": {
                "tags": ["Pricing"],
                "summary": "Download a rendered pricing report",
                "parameters": [
                    {"name": "token", "in": "path", "required": true, "type": "string"}
                ],
                "produces": ["application/octet-stream"],
                "responses": {
                    "200": {"description": "Report file"},
                    "403": {"description": "Invalid or expired token"},
                    "404": {"description": "File no longer available"}
                }
            }
        },
        "/api/v1/calendar": {
            "get": {
                "tags": ["Calendar"],
                "summary": "Current normalized occasion calendar",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/calendar/reload": {
            "post": {
                "tags": ["Calendar"],
                "summary": "Reload the occasion calendar from its source",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Missing or invalid token"},
                    "403": {"description": "Not an admin"}
                }
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "definitions": {
        "PricingReportRequest": {
            "type": "object",
            "required": ["original_price", "condition", "base_pct"],
            "properties": {
                "original_price": {"type": "number", "minimum": 1, "maximum": 10000},
                "condition": {"type": "integer", "minimum": 1, "maximum": 5},
                "material": {"type": "string"},
                "silhouette": {"type": "string"},
                "color": {"type": "string"},
                "notes": {"type": "string"},
                "base_pct": {"type": "number", "minimum": 5, "maximum": 60},
                "rush_pct": {"type": "number", "minimum": 0, "maximum": 60},
                "weekend_pct": {"type": "number", "minimum": 0, "maximum": 60},
                "event_date": {"type": "string", "description": "YYYY-MM-DD"},
                "user_segment": {"type": "string"}
            }
        },
        "ExportRequest": {
            "allOf": [
                {"$ref": "#/definitions/PricingReportRequest"},
                {
                    "type": "object",
                    "properties": {
                        "format": {"type": "string", "enum": ["csv", "pdf"]}
                    }
                }
            ]
        },
        "PricedOccasionRow": {
            "type": "object",
            "properties": {
                "occasion": {"type": "string"},
                "user_type": {"type": "string"},
                "start_month": {"type": "integer"},
                "end_month": {"type": "integer"},
                "multiplier": {"type": "number"},
                "notes": {"type": "string"},
                "in_season_now": {"type": "boolean"},
                "suggested_price": {"type": "integer"},
                "low": {"type": "integer"},
                "high": {"type": "integer"},
                "confidence_pct": {"type": "integer"}
            }
        },
        "PricingReport": {
            "type": "object",
            "properties": {
                "base_price": {"type": "number"},
                "rows": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/PricedOccasionRow"}
                },
                "standard": {"type": "integer"},
                "conservative": {"type": "integer"},
                "premium": {"type": "integer"},
                "used_defaults": {"type": "boolean"}
            }
        },
        "ExportResult": {
            "type": "object",
            "properties": {
                "url": {"type": "string"},
                "format": {"type": "string"},
                "expires_at": {"type": "string"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
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
