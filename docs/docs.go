// Package docs holds the swagger document for the telemetry API.
// Regenerate with: swag init -g cmd/main.go
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
        "/sensors/{id}": {
            "get": {
                "description": "Return the sensor's current state and last reading",
                "produces": ["application/json"],
                "tags": ["sensors"],
                "summary": "Get a sensor",
                "parameters": [
                    {"type": "string", "description": "Sensor ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Sensor"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.APIError"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errors.APIError"}}
                }
            }
        },
        "/sensors/{id}/images": {
            "post": {
                "description": "Archive a JPEG image and set image_url on the sensor's last reading.\nThe image is the raw request body or the multipart field \"file\".",
                "consumes": ["image/jpeg", "multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["sensors"],
                "summary": "Ingest a sensor image",
                "parameters": [
                    {"type": "string", "description": "Sensor ID", "name": "id", "in": "path", "required": true},
                    {"type": "file", "description": "Image file", "name": "file", "in": "formData"}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.APIError"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errors.APIError"}},
                    "413": {"description": "Request Entity Too Large", "schema": {"$ref": "#/definitions/errors.APIError"}}
                }
            }
        },
        "/sensors/{id}/readings": {
            "post": {
                "description": "Archive a raw reading and make it the sensor's last reading",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["sensors"],
                "summary": "Ingest a sensor reading",
                "parameters": [
                    {"type": "string", "description": "Sensor ID", "name": "id", "in": "path", "required": true},
                    {"description": "Reading payload, stored as-is", "name": "reading", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.APIError"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errors.APIError"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/errors.APIError"}}
                }
            }
        },
        "/zones/{id}/report": {
            "get": {
                "description": "Normalized last readings of every active sensor in the zone",
                "produces": ["application/json"],
                "tags": ["zones"],
                "summary": "Get a zone report",
                "parameters": [
                    {"type": "string", "description": "Zone ID", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "Collision policy (last_wins, first_wins)", "name": "policy", "in": "query"},
                    {"type": "boolean", "description": "Bypass the report cache", "name": "no_cache", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.ZoneReport"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.APIError"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/errors.APIError"}}
                }
            }
        }
    },
    "definitions": {
        "errors.APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "integer"},
                "details": {},
                "message": {"type": "string"},
                "request_id": {"type": "string"},
                "type": {"type": "string"}
            }
        },
        "models.Collision": {
            "type": "object",
            "properties": {
                "chosen": {"type": "string"},
                "policy": {"type": "string"},
                "sensor_ids": {"type": "array", "items": {"type": "string"}},
                "type": {"type": "string"}
            }
        },
        "models.Sensor": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "is_active": {"type": "boolean"},
                "last_reading": {"type": "object"},
                "name": {"type": "string"},
                "type": {"type": "string"},
                "zone_id": {"type": "string"}
            }
        },
        "models.UnsupportedSensor": {
            "type": "object",
            "properties": {
                "sensor_id": {"type": "string"},
                "type": {"type": "string"}
            }
        },
        "models.ZoneReport": {
            "type": "object",
            "properties": {
                "collisions": {"type": "array", "items": {"$ref": "#/definitions/models.Collision"}},
                "metrics": {"type": "object", "additionalProperties": {"type": "object"}},
                "timestamp": {"type": "string"},
                "unsupported": {"type": "array", "items": {"$ref": "#/definitions/models.UnsupportedSensor"}},
                "zone_id": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/v1",
	Schemes:          []string{},
	Title:            "Telemetry Service API",
	Description:      "Sensor ingestion and zone reporting",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
