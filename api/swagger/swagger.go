package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Recruitment API",
        "description": "Applicant tracking service: job postings, application funnel, audit trail.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Login, registration and token lifecycle"},
        {"name": "Jobs", "description": "Job posting management"},
        {"name": "Applications", "description": "Application funnel"},
        {"name": "Audit", "description": "Audit trail queries"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "responses": {
                    "200": {"description": "Tokens issued"},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/register": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Register applicant account",
                "responses": {
                    "201": {"description": "Account created"},
                    "409": {"description": "Email already registered"}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Refresh access token",
                "responses": {
                    "200": {"description": "Tokens rotated"},
                    "401": {"description": "Refresh token invalid"}
                }
            }
        },
        "/jobs": {
            "get": {
                "tags": ["Jobs"],
                "summary": "List job postings",
                "responses": {
                    "200": {"description": "Job postings"}
                }
            },
            "post": {
                "tags": ["Jobs"],
                "summary": "Create job posting",
                "responses": {
                    "201": {"description": "Posting created"},
                    "400": {"description": "Invalid payload"}
                }
            }
        },
        "/jobs/{id}": {
            "get": {
                "tags": ["Jobs"],
                "summary": "Get job posting",
                "responses": {
                    "200": {"description": "Job posting"},
                    "404": {"description": "Not found"}
                }
            },
            "put": {
                "tags": ["Jobs"],
                "summary": "Update job posting",
                "responses": {
                    "200": {"description": "Posting updated"}
                }
            },
            "delete": {
                "tags": ["Jobs"],
                "summary": "Delete job posting",
                "responses": {
                    "204": {"description": "Deleted"},
                    "409": {"description": "Posting has applications"}
                }
            }
        },
        "/applications/guest": {
            "post": {
                "tags": ["Applications"],
                "summary": "Apply without an account",
                "responses": {
                    "201": {"description": "Application received"},
                    "409": {"description": "Duplicate application"},
                    "422": {"description": "Job not open for applications"}
                }
            }
        },
        "/applications": {
            "get": {
                "tags": ["Applications"],
                "summary": "List applications",
                "responses": {
                    "200": {"description": "Applications"}
                }
            },
            "post": {
                "tags": ["Applications"],
                "summary": "Apply as authenticated applicant",
                "responses": {
                    "201": {"description": "Application received"}
                }
            }
        },
        "/applications/{id}/status": {
            "patch": {
                "tags": ["Applications"],
                "summary": "Move application through the funnel",
                "responses": {
                    "200": {"description": "Status updated"},
                    "400": {"description": "Transition not allowed"},
                    "409": {"description": "Version conflict"}
                }
            }
        },
        "/applications/stats": {
            "get": {
                "tags": ["Applications"],
                "summary": "Funnel statistics",
                "responses": {
                    "200": {"description": "Per-status counts"}
                }
            }
        },
        "/audit-logs": {
            "get": {
                "tags": ["Audit"],
                "summary": "Query audit trail",
                "responses": {
                    "200": {"description": "Audit entries"},
                    "403": {"description": "Admin only"}
                }
            }
        }
    },
    "definitions": {
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
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
                "pagination": {"$ref": "#/definitions/Pagination"},
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
