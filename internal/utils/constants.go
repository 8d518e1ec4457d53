package utils

// Response statuses
const (
	StatusSuccess         = "SUCCESS"
	StatusFailure         = "FAILURE"
	StatusBadRequest      = "BAD_REQUEST"
	StatusValidationError = "VALIDATION_ERROR"
	StatusUnauthorized    = "UNAUTHORIZED"
	StatusRecordNotFound  = "RECORD_NOT_FOUND"
	StatusServerError     = "SERVER_ERROR"
)

// Default response messages
const (
	MsgSuccess         = "Your request is successfully executed"
	MsgFailure         = "Some error occurred while performing action."
	MsgBadRequest      = "Request parameters are invalid or missing."
	MsgValidationError = "Invalid Data, Validation Failed."
	MsgUnauthorized    = "You are not authorized to access the request"
	MsgRecordNotFound  = "Record not found with specified criteria."
	MsgInternalServer  = "Internal server error."
)

// Pagination
const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// Gin context keys
const (
	ContextUserID    = "user_id"
	ContextUser      = "user"
	ContextToken     = "token"
	ContextRequestID = "request_id"
)

// Cache key prefixes
const (
	CacheKeyToken      = "token:"
	CacheKeyUserRoles  = "perm:user:"
	CacheKeyRouteRoles = "perm:route:"
	CacheKeyPermission = "perm:"
)
