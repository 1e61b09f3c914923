package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Placement Portal API",
        "description": "Placement opportunities, discussion threads and milestone calendars for students and the placement team.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http",
        "https"
    ],
    "securityDefinitions": {
        "CookieAuth": {
            "type": "apiKey",
            "in": "header",
            "name": "Cookie"
        },
        "BearerAuth": {
            "type": "apiKey",
            "in": "header",
            "name": "Authorization"
        }
    },
    "tags": [
        {
            "name": "Authentication"
        },
        {
            "name": "Students"
        },
        {
            "name": "PlacementTeam"
        },
        {
            "name": "Catalog"
        },
        {
            "name": "Posts"
        },
        {
            "name": "Discussion"
        },
        {
            "name": "Notifications"
        },
        {
            "name": "Calendar"
        }
    ],
    "paths": {
        "/auth/student/signup": {
            "post": {
                "tags": [
                    "Authentication"
                ],
                "summary": "Register a student",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/SignupRequest"
                        }
                    }
                ]
            }
        },
        "/auth/student/login": {
            "post": {
                "tags": [
                    "Authentication"
                ],
                "summary": "Authenticate a student",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/LoginRequest"
                        }
                    }
                ]
            }
        },
        "/auth/student/logout": {
            "post": {
                "tags": [
                    "Authentication"
                ],
                "summary": "Clear the session cookie",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/auth/student/complete-profile": {
            "put": {
                "tags": [
                    "Students"
                ],
                "summary": "Fill the academic profile of a new student",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/CompleteProfileRequest"
                        }
                    }
                ],
                "security": [
                    {
                        "CookieAuth": []
                    },
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/auth/placement-team/signup": {
            "post": {
                "tags": [
                    "Authentication"
                ],
                "summary": "Register a placement-team member",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/SignupRequest"
                        }
                    }
                ]
            }
        },
        "/auth/placement-team/login": {
            "post": {
                "tags": [
                    "Authentication"
                ],
                "summary": "Authenticate a placement-team member",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/LoginRequest"
                        }
                    }
                ]
            }
        },
        "/auth/placement-team/logout": {
            "post": {
                "tags": [
                    "Authentication"
                ],
                "summary": "Clear the session cookie",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/student/homepage-dropdown-options": {
            "get": {
                "tags": [
                    "Catalog"
                ],
                "summary": "Branches, years, cgpa bands and post types",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "CookieAuth": []
                    },
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/student/profile": {
            "get": {
                "tags": [
                    "Students"
                ],
                "summary": "Current student's profile",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "CookieAuth": []
                    },
                    {
                        "BearerAuth": []
                    }
                ]
            },
            "put": {
                "tags": [
                    "Students"
                ],
                "summary": "Update editable student fields",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/UpdateProfileRequest"
                        }
                    }
                ],
                "security": [
                    {
                        "CookieAuth": []
                    },
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/student/profile/profile-picture": {
            "put": {
                "tags": [
                    "Students"
                ],
                "summary": "Upload a new profile picture",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/ProfilePictureRequest"
                        }
                    }
                ],
                "security": [
                    {
                        "CookieAuth": []
                    },
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/student/posts": {
            "get": {
                "tags": [
                    "Posts"
                ],
                "summary": "List posts, newest first",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "CookieAuth": []
                    },
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/student/posts/save/{id}": {
            "put": {
                "tags": [
                    "Posts"
                ],
                "summary": "Save or unsave a post",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "security": [
                    {
                        "CookieAuth": []
                    },
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/student/posts/saved": {
            "get": {
                "tags": [
                    "Posts"
                ],
                "summary": "The current student's saved posts",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "CookieAuth": []
                    },
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/student/posts/{id}/query": {
            "post": {
                "tags": [
                    "Discussion"
                ],
                "summary": "Ask a question on a post",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/AskQueryRequest"
                        }
                    }
                ],
                "security": [
                    {
                        "CookieAuth": []
                    },
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/student/posts/{id}": {
            "get": {
                "tags": [
                    "Posts"
                ],
                "summary": "Post detail with author and query threads",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "security": [
                    {
                        "CookieAuth": []
                    },
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/student/notifications": {
            "get": {
                "tags": [
                    "Notifications"
                ],
                "summary": "Notifications for the current student",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "CookieAuth": []
                    },
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/student/notifications/{id}/mark-as-read": {
            "put": {
                "tags": [
                    "Notifications"
                ],
                "summary": "Mark a student notification as read",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "security": [
                    {
                        "CookieAuth": []
                    },
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/student/calendar/toggle-events/{postId}": {
            "post": {
                "tags": [
                    "Calendar"
                ],
                "summary": "Toggle a post on the student's calendar",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "postId",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "security": [
                    {
                        "CookieAuth": []
                    },
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/student/calendar/check-events/{postId}": {
            "get": {
                "tags": [
                    "Calendar"
                ],
                "summary": "Whether a post is on the student's calendar",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "postId",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "security": [
                    {
                        "CookieAuth": []
                    },
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/student/calendar/view-events": {
            "get": {
                "tags": [
                    "Calendar"
                ],
                "summary": "The student's calendar events",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "CookieAuth": []
                    },
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/student/calendar/delete-event/{id}": {
            "delete": {
                "tags": [
                    "Calendar"
                ],
                "summary": "Remove one event from the student's calendar",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "security": [
                    {
                        "CookieAuth": []
                    },
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/student/calendar/exports": {
            "post": {
                "tags": [
                    "Calendar"
                ],
                "summary": "Queue an export of the student's calendar",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/CreateExportRequest"
                        }
                    }
                ],
                "security": [
                    {
                        "CookieAuth": []
                    },
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/student/calendar/exports/{id}": {
            "get": {
                "tags": [
                    "Calendar"
                ],
                "summary": "Export job status",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "security": [
                    {
                        "CookieAuth": []
                    },
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/calendar/exports/download/{token}": {
            "get": {
                "tags": [
                    "Calendar"
                ],
                "summary": "Stream a finished export",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "token",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ]
            }
        },
        "/placement-team/homepage-dropdown-options": {
            "get": {
                "tags": [
                    "Catalog"
                ],
                "summary": "Branches, years, cgpa bands and post types",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "CookieAuth": []
                    },
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/placement-team/profile": {
            "get": {
                "tags": [
                    "PlacementTeam"
                ],
                "summary": "Current placement-team member's profile",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "CookieAuth": []
                    },
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/placement-team/posts": {
            "get": {
                "tags": [
                    "Posts"
                ],
                "summary": "List posts, newest first",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "CookieAuth": []
                    },
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/placement-team/posts/new-post": {
            "post": {
                "tags": [
                    "Posts"
                ],
                "summary": "Publish a post and its team calendar events",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/CreatePostRequest"
                        }
                    }
                ],
                "security": [
                    {
                        "CookieAuth": []
                    },
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/placement-team/posts/edit-post/{id}": {
            "put": {
                "tags": [
                    "Posts"
                ],
                "summary": "Edit a post and resynchronize its calendar events",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/UpdatePostRequest"
                        }
                    }
                ],
                "security": [
                    {
                        "CookieAuth": []
                    },
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/placement-team/posts/my-posts": {
            "get": {
                "tags": [
                    "Posts"
                ],
                "summary": "Posts authored by the current member",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "CookieAuth": []
                    },
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/placement-team/posts/{id}": {
            "delete": {
                "tags": [
                    "Posts"
                ],
                "summary": "Delete a post and its calendar events",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "security": [
                    {
                        "CookieAuth": []
                    },
                    {
                        "BearerAuth": []
                    }
                ]
            },
            "get": {
                "tags": [
                    "Posts"
                ],
                "summary": "Post detail with author and query threads",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "security": [
                    {
                        "CookieAuth": []
                    },
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/placement-team/calendar/view-events": {
            "get": {
                "tags": [
                    "Calendar"
                ],
                "summary": "The shared team calendar",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "CookieAuth": []
                    },
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/placement-team/posts/query/{queryId}/reply": {
            "post": {
                "tags": [
                    "Discussion"
                ],
                "summary": "Reply to a student's query",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "queryId",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/ReplyRequest"
                        }
                    }
                ],
                "security": [
                    {
                        "CookieAuth": []
                    },
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/placement-team/notifications": {
            "get": {
                "tags": [
                    "Notifications"
                ],
                "summary": "Notifications for the current member",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "CookieAuth": []
                    },
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/placement-team/notifications/{id}/mark-as-read": {
            "put": {
                "tags": [
                    "Notifications"
                ],
                "summary": "Mark a placement-team notification as read",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "security": [
                    {
                        "CookieAuth": []
                    },
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/health": {
            "get": {
                "summary": "Liveness probe",
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness probe, pings Postgres and Redis",
                "responses": {
                    "200": {
                        "description": "Ready"
                    },
                    "503": {
                        "description": "A dependency is down"
                    }
                }
            }
        },
        "/metrics": {
            "get": {
                "summary": "Prometheus metrics",
                "produces": [
                    "text/plain"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        }
    },
    "definitions": {
        "SignupRequest": {
            "type": "object",
            "properties": {
                "name": {
                    "type": "string"
                },
                "email": {
                    "type": "string"
                },
                "password": {
                    "type": "string"
                }
            }
        },
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {
                    "type": "string"
                },
                "password": {
                    "type": "string"
                }
            }
        },
        "CompleteProfileRequest": {
            "type": "object",
            "properties": {
                "rollno": {
                    "type": "string"
                },
                "branch": {
                    "type": "string"
                },
                "year": {
                    "type": "integer"
                },
                "cgpa": {
                    "type": "number"
                },
                "phone": {
                    "type": "string"
                },
                "linkedin": {
                    "type": "string"
                },
                "skills": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                }
            }
        },
        "UpdateProfileRequest": {
            "type": "object",
            "properties": {
                "name": {
                    "type": "string"
                },
                "rollno": {
                    "type": "string"
                },
                "branch": {
                    "type": "string"
                },
                "year": {
                    "type": "integer"
                },
                "cgpa": {
                    "type": "number"
                },
                "phone": {
                    "type": "string"
                },
                "linkedin": {
                    "type": "string"
                },
                "skills": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                }
            }
        },
        "ProfilePictureRequest": {
            "type": "object",
            "properties": {
                "profilePicture": {
                    "type": "string"
                }
            }
        },
        "AskQueryRequest": {
            "type": "object",
            "properties": {
                "queryText": {
                    "type": "string"
                }
            }
        },
        "ReplyRequest": {
            "type": "object",
            "properties": {
                "replyText": {
                    "type": "string"
                }
            }
        },
        "CreateExportRequest": {
            "type": "object",
            "properties": {
                "format": {
                    "type": "string",
                    "enum": [
                        "csv",
                        "pdf",
                        "ics"
                    ]
                }
            }
        },
        "CreatePostRequest": {
            "type": "object",
            "properties": {
                "organization": {
                    "type": "string"
                },
                "title": {
                    "type": "string"
                },
                "eventType": {
                    "type": "string"
                },
                "details": {
                    "type": "string"
                },
                "registrationLink": {
                    "type": "string"
                },
                "branchesEligible": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "year": {
                    "type": "array",
                    "items": {
                        "type": "integer"
                    }
                },
                "cgpa": {
                    "type": "number"
                },
                "applicationDeadline": {
                    "type": "object",
                    "properties": {
                        "date": {
                            "type": "string",
                            "example": "2026-03-14"
                        },
                        "label": {
                            "type": "string"
                        },
                        "color": {
                            "type": "string"
                        }
                    }
                },
                "prePlacementTalkDate": {
                    "type": "object",
                    "properties": {
                        "date": {
                            "type": "string",
                            "example": "2026-03-14"
                        },
                        "label": {
                            "type": "string"
                        },
                        "color": {
                            "type": "string"
                        }
                    }
                },
                "personalityAssessmentDate": {
                    "type": "object",
                    "properties": {
                        "date": {
                            "type": "string",
                            "example": "2026-03-14"
                        },
                        "label": {
                            "type": "string"
                        },
                        "color": {
                            "type": "string"
                        }
                    }
                },
                "aptitudeTestDate": {
                    "type": "object",
                    "properties": {
                        "date": {
                            "type": "string",
                            "example": "2026-03-14"
                        },
                        "label": {
                            "type": "string"
                        },
                        "color": {
                            "type": "string"
                        }
                    }
                },
                "codingTestDate": {
                    "type": "object",
                    "properties": {
                        "date": {
                            "type": "string",
                            "example": "2026-03-14"
                        },
                        "label": {
                            "type": "string"
                        },
                        "color": {
                            "type": "string"
                        }
                    }
                },
                "interviewDate": {
                    "type": "object",
                    "properties": {
                        "date": {
                            "type": "string",
                            "example": "2026-03-14"
                        },
                        "label": {
                            "type": "string"
                        },
                        "color": {
                            "type": "string"
                        }
                    }
                },
                "hackathonDate": {
                    "type": "object",
                    "properties": {
                        "date": {
                            "type": "string",
                            "example": "2026-03-14"
                        },
                        "label": {
                            "type": "string"
                        },
                        "color": {
                            "type": "string"
                        }
                    }
                },
                "trainingSessionDate": {
                    "type": "object",
                    "properties": {
                        "date": {
                            "type": "string",
                            "example": "2026-03-14"
                        },
                        "label": {
                            "type": "string"
                        },
                        "color": {
                            "type": "string"
                        }
                    }
                },
                "eventDate": {
                    "type": "object",
                    "properties": {
                        "date": {
                            "type": "string",
                            "example": "2026-03-14"
                        },
                        "label": {
                            "type": "string"
                        },
                        "color": {
                            "type": "string"
                        }
                    }
                }
            }
        },
        "UpdatePostRequest": {
            "type": "object",
            "properties": {
                "organization": {
                    "type": "string"
                },
                "title": {
                    "type": "string"
                },
                "eventType": {
                    "type": "string"
                },
                "details": {
                    "type": "string"
                },
                "registrationLink": {
                    "type": "string"
                },
                "branchesEligible": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "year": {
                    "type": "array",
                    "items": {
                        "type": "integer"
                    }
                },
                "cgpa": {
                    "type": "number"
                },
                "applicationDeadline": {
                    "type": "object",
                    "properties": {
                        "date": {
                            "type": "string",
                            "example": "2026-03-14"
                        },
                        "label": {
                            "type": "string"
                        },
                        "color": {
                            "type": "string"
                        }
                    }
                },
                "prePlacementTalkDate": {
                    "type": "object",
                    "properties": {
                        "date": {
                            "type": "string",
                            "example": "2026-03-14"
                        },
                        "label": {
                            "type": "string"
                        },
                        "color": {
                            "type": "string"
                        }
                    }
                },
                "personalityAssessmentDate": {
                    "type": "object",
                    "properties": {
                        "date": {
                            "type": "string",
                            "example": "2026-03-14"
                        },
                        "label": {
                            "type": "string"
                        },
                        "color": {
                            "type": "string"
                        }
                    }
                },
                "aptitudeTestDate": {
                    "type": "object",
                    "properties": {
                        "date": {
                            "type": "string",
                            "example": "2026-03-14"
                        },
                        "label": {
                            "type": "string"
                        },
                        "color": {
                            "type": "string"
                        }
                    }
                },
                "codingTestDate": {
                    "type": "object",
                    "properties": {
                        "date": {
                            "type": "string",
                            "example": "2026-03-14"
                        },
                        "label": {
                            "type": "string"
                        },
                        "color": {
                            "type": "string"
                        }
                    }
                },
                "interviewDate": {
                    "type": "object",
                    "properties": {
                        "date": {
                            "type": "string",
                            "example": "2026-03-14"
                        },
                        "label": {
                            "type": "string"
                        },
                        "color": {
                            "type": "string"
                        }
                    }
                },
                "hackathonDate": {
                    "type": "object",
                    "properties": {
                        "date": {
                            "type": "string",
                            "example": "2026-03-14"
                        },
                        "label": {
                            "type": "string"
                        },
                        "color": {
                            "type": "string"
                        }
                    }
                },
                "trainingSessionDate": {
                    "type": "object",
                    "properties": {
                        "date": {
                            "type": "string",
                            "example": "2026-03-14"
                        },
                        "label": {
                            "type": "string"
                        },
                        "color": {
                            "type": "string"
                        }
                    }
                },
                "eventDate": {
                    "type": "object",
                    "properties": {
                        "date": {
                            "type": "string",
                            "example": "2026-03-14"
                        },
                        "label": {
                            "type": "string"
                        },
                        "color": {
                            "type": "string"
                        }
                    }
                }
            }
        },
        "CalendarEvent": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string"
                },
                "name": {
                    "type": "string"
                },
                "date": {
                    "type": "string",
                    "example": "2026-03-14"
                },
                "color": {
                    "type": "string"
                },
                "post_id": {
                    "type": "string"
                },
                "student_id": {
                    "type": "string"
                }
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {
                    "type": "string"
                },
                "message": {
                    "type": "string"
                },
                "status": {
                    "type": "integer"
                }
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {
                    "type": "object"
                },
                "message": {
                    "type": "string"
                },
                "error": {
                    "$ref": "#/definitions/APIError"
                },
                "meta": {
                    "type": "object"
                }
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
