package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Course Enrollment API",
        "description": "Student registry, course registry and course enrollment orchestration",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "ApiKeyAuth": {"type": "apiKey", "in": "header", "name": "x-api-key"}
    },
    "tags": [
        {"name": "Students", "description": "Student registry (student-api)"},
        {"name": "Enrollments", "description": "Course enrollment snapshots (student-api)"},
        {"name": "Courses", "description": "Course registry (course-api)"},
        {"name": "Health", "description": "Liveness and readiness probes"}
    ],
    "paths": {
        "/health": {
            "get": {
                "tags": ["Health"],
                "summary": "Liveness probe",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/ready": {
            "get": {
                "tags": ["Health"],
                "summary": "Readiness probe",
                "responses": {
                    "200": {"description": "Ready", "schema": {"$ref": "#/definitions/HealthReport"}},
                    "503": {"description": "A required component is down", "schema": {"$ref": "#/definitions/HealthReport"}}
                }
            }
        },
        "/api/student": {
            "get": {
                "tags": ["Students"],
                "summary": "List students",
                "security": [{"ApiKeyAuth": []}],
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "deleted", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"},
                    {"name": "sort", "in": "query", "type": "string"},
                    {"name": "order", "in": "query", "type": "string"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Students"],
                "summary": "Create student",
                "security": [{"ApiKeyAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/StudentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/student/{studentId}": {
            "parameters": [
                {"name": "studentId", "in": "path", "required": true, "type": "integer"}
            ],
            "get": {
                "tags": ["Students"],
                "summary": "Get student with enrollments",
                "security": [{"ApiKeyAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "STUDENT_NOT_FOUND", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Students"],
                "summary": "Update student name and age",
                "security": [{"ApiKeyAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/StudentRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "delete": {
                "tags": ["Students"],
                "summary": "Soft delete student",
                "security": [{"ApiKeyAuth": []}],
                "responses": {"200": {"description": "Updated record", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/student/courses/{studentId}": {
            "get": {
                "tags": ["Enrollments"],
                "summary": "List student enrollments",
                "security": [{"ApiKeyAuth": []}],
                "parameters": [
                    {"name": "studentId", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "STUDENT_NOT_FOUND", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/student/courses/{studentId}/export": {
            "get": {
                "tags": ["Enrollments"],
                "summary": "Export student enrollments",
                "security": [{"ApiKeyAuth": []}],
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "studentId", "in": "path", "required": true, "type": "integer"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File"},
                    "400": {"description": "Unsupported format", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/student/courses/{studentId}/{courseCode}": {
            "parameters": [
                {"name": "studentId", "in": "path", "required": true, "type": "integer"},
                {"name": "courseCode", "in": "path", "required": true, "type": "string"}
            ],
            "post": {
                "tags": ["Enrollments"],
                "summary": "Enroll student in a course",
                "security": [{"ApiKeyAuth": []}],
                "responses": {
                    "200": {"description": "Enrollment", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "STUDENT_NOT_FOUND, COURSE_NOT_FOUND or COURSE_UNAVAILABLE", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "ALREADY_ENROLLED", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "502": {"description": "UPSTREAM_UNAVAILABLE", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Enrollments"],
                "summary": "Refresh enrollment course snapshot",
                "security": [{"ApiKeyAuth": []}],
                "responses": {
                    "200": {"description": "Enrollment", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "STUDENT_NOT_FOUND, ENROLLMENT_NOT_FOUND or COURSE_NOT_FOUND", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "502": {"description": "UPSTREAM_UNAVAILABLE", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Enrollments"],
                "summary": "Remove enrollment",
                "security": [{"ApiKeyAuth": []}],
                "responses": {
                    "200": {"description": "Removed"},
                    "404": {"description": "STUDENT_NOT_FOUND or ENROLLMENT_NOT_FOUND", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/course": {
            "get": {
                "tags": ["Courses"],
                "summary": "List courses",
                "security": [{"ApiKeyAuth": []}],
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "deleted", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Courses"],
                "summary": "Create course",
                "security": [{"ApiKeyAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CourseRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "COURSE_EXISTS", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/course/{code}": {
            "parameters": [
                {"name": "code", "in": "path", "required": true, "type": "string"}
            ],
            "get": {
                "tags": ["Courses"],
                "summary": "Get course by code (retired courses have deleted=true)",
                "security": [{"ApiKeyAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "COURSE_NOT_FOUND", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Courses"],
                "summary": "Update course name and description",
                "security": [{"ApiKeyAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CourseRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "delete": {
                "tags": ["Courses"],
                "summary": "Retire course",
                "security": [{"ApiKeyAuth": []}],
                "responses": {"200": {"description": "Updated record", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        }
    },
    "definitions": {
        "StudentRequest": {
            "type": "object",
            "required": ["name", "age"],
            "properties": {
                "name": {"type": "string"},
                "age": {"type": "integer", "minimum": 0}
            }
        },
        "CourseRequest": {
            "type": "object",
            "required": ["name"],
            "properties": {
                "code": {"type": "string"},
                "name": {"type": "string"},
                "description": {"type": "string"}
            }
        },
        "HealthReport": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "components": {"type": "object"},
                "checked_at": {"type": "string", "format": "date-time"}
            }
        },
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
