// Package docs holds the OpenAPI document for the expiry read API
package docs

import "github.com/swaggo/swag/v2"

const docTemplate = `{
    "openapi": "3.0.3",
    "info": {
        "title": "{{.Title}}",
        "description": "{{escape .Description}}",
        "version": "{{.Version}}"
    },
    "paths": {
        "/expiry/signatures": {
            "get": {
                "tags": ["Expiry"],
                "summary": "Global batch signatures, highest confidence first",
                "operationId": "expirySignatures",
                "parameters": [
                    {"name": "barcode", "in": "query", "schema": {"type": "string", "maxLength": 64}, "description": "Exact barcode"},
                    {"name": "expiry_from", "in": "query", "schema": {"type": "string", "format": "date"}, "description": "Earliest expiry date"},
                    {"name": "expiry_to", "in": "query", "schema": {"type": "string", "format": "date"}, "description": "Latest expiry date"},
                    {"name": "min_confidence", "in": "query", "schema": {"type": "number", "minimum": 0, "maximum": 1}},
                    {"name": "limit", "in": "query", "schema": {"type": "integer", "minimum": 1, "maximum": 500, "default": 100}}
                ],
                "responses": {
                    "200": {
                        "description": "ok",
                        "content": {"application/json": {"schema": {"$ref": "#/components/schemas/SignatureList"}}}
                    }
                }
            }
        },
        "/expiry/tenants/{tenantID}/recommendations": {
            "get": {
                "tags": ["Expiry"],
                "summary": "One tenant's active recommendations, riskiest first",
                "operationId": "expiryRecommendations",
                "parameters": [
                    {"name": "tenantID", "in": "path", "required": true, "schema": {"type": "integer", "format": "int64", "minimum": 1}},
                    {"name": "level", "in": "query", "schema": {"type": "string", "enum": ["weak", "likely", "confirmed"]}},
                    {"name": "limit", "in": "query", "schema": {"type": "integer", "minimum": 1, "maximum": 500, "default": 100}}
                ],
                "responses": {
                    "200": {
                        "description": "ok",
                        "content": {"application/json": {"schema": {"$ref": "#/components/schemas/RecommendationList"}}}
                    }
                }
            }
        },
        "/expiry/runs/latest": {
            "get": {
                "tags": ["Expiry"],
                "summary": "Most recent orchestrator run",
                "operationId": "expiryLatestRun",
                "responses": {
                    "200": {
                        "description": "ok",
                        "content": {"application/json": {"schema": {"$ref": "#/components/schemas/Run"}}}
                    },
                    "404": {
                        "description": "no run recorded yet",
                        "content": {"application/json": {"schema": {"$ref": "#/components/schemas/ErrorResponse"}}}
                    }
                }
            }
        },
        "/meta/health": {
            "get": {"tags": ["Meta"], "summary": "Liveness", "operationId": "metaHealth", "responses": {"200": {"description": "ok"}}}
        },
        "/meta/ready": {
            "get": {"tags": ["Meta"], "summary": "Readiness of postgres and freshness of the last run", "operationId": "metaReady", "responses": {"200": {"description": "ok, degraded or fail per check"}}}
        },
        "/meta/service": {
            "get": {"tags": ["Meta"], "summary": "Service name and build info", "operationId": "metaService", "responses": {"200": {"description": "ok"}}}
        }
    },
    "components": {
        "schemas": {
            "SignatureRow": {
                "type": "object",
                "properties": {
                    "barcode": {"type": "string"},
                    "name_norm": {"type": "string"},
                    "expiry_date": {"type": "string", "format": "date"},
                    "distinct_tenant_count": {"type": "integer"},
                    "support_sum": {"type": "number"},
                    "confidence": {"type": "number"},
                    "updated_at": {"type": "string", "format": "date-time"}
                }
            },
            "RecommendationRow": {
                "type": "object",
                "properties": {
                    "barcode": {"type": "string"},
                    "name_norm": {"type": "string"},
                    "expiry_date": {"type": "string", "format": "date"},
                    "confidence": {"type": "number"},
                    "time_risk": {"type": "number"},
                    "risk": {"type": "number"},
                    "level": {"type": "string", "enum": ["weak", "likely", "confirmed"]},
                    "store_confirmations": {"type": "integer"},
                    "last_computed_at": {"type": "string", "format": "date-time"}
                }
            },
            "SignatureList": {
                "type": "object",
                "properties": {
                    "items": {"type": "array", "items": {"$ref": "#/components/schemas/SignatureRow"}},
                    "count": {"type": "integer"},
                    "limit": {"type": "integer"}
                }
            },
            "RecommendationList": {
                "type": "object",
                "properties": {
                    "items": {"type": "array", "items": {"$ref": "#/components/schemas/RecommendationRow"}},
                    "count": {"type": "integer"},
                    "limit": {"type": "integer"}
                }
            },
            "Run": {
                "type": "object",
                "properties": {
                    "id": {"type": "string", "format": "uuid"},
                    "started_at": {"type": "string", "format": "date-time"},
                    "finished_at": {"type": "string", "format": "date-time"},
                    "status": {"type": "string", "enum": ["running", "ok", "error", "canceled"]},
                    "params": {"type": "object"},
                    "signatures": {"type": "integer"},
                    "recommendations": {"type": "integer"},
                    "tenants_done": {"type": "integer"},
                    "tenants_total": {"type": "integer"},
                    "skipped": {"type": "integer"},
                    "unresolved": {"type": "integer"},
                    "error": {"type": "string"}
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "0.1.0",
	Title:            "ExpiryAI API",
	Description:      "Read only endpoints for batch signatures, store recommendations and run history",
	InfoInstanceName: "expiryai",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
