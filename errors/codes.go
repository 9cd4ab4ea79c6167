package errors

// ErrorCode is a machine-readable error code carried in API responses.
type ErrorCode string

// Authentication errors (401).
const (
	// CodeNoToken indicates no authentication token was provided.
	CodeNoToken ErrorCode = "NO_TOKEN"
	// CodeTokenRevoked indicates the token has been revoked via logout.
	CodeTokenRevoked ErrorCode = "TOKEN_REVOKED"
	// CodeTokenExpired indicates the token is past its expiry.
	CodeTokenExpired ErrorCode = "TOKEN_EXPIRED"
	// CodeTokenInvalid indicates the token failed signature or claim checks.
	CodeTokenInvalid ErrorCode = "TOKEN_INVALID"
	// CodeTokenNotYetValid indicates the token's not-before is in the future.
	CodeTokenNotYetValid ErrorCode = "TOKEN_NOT_YET_VALID"
	// CodeAuthRequired indicates an authorization check ran without an identity.
	CodeAuthRequired ErrorCode = "AUTH_REQUIRED"
	// CodeUserNotFound indicates the token subject no longer exists in the store.
	CodeUserNotFound ErrorCode = "USER_NOT_FOUND"
	// CodeInvalidCredentials indicates a failed login attempt.
	CodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	// CodeAccountDisabled indicates a login attempt against a banned account.
	CodeAccountDisabled ErrorCode = "ACCOUNT_DISABLED"
)

// Authorization errors (403).
const (
	// CodeInsufficientPermissions indicates the identity's role is not allowed.
	CodeInsufficientPermissions ErrorCode = "INSUFFICIENT_PERMISSIONS"
	// CodeAccessForbidden indicates an ownership check failed.
	CodeAccessForbidden ErrorCode = "ACCESS_FORBIDDEN"
)

// Client errors (400, 404, 409).
const (
	// CodeValidationFailed indicates malformed or incomplete input.
	CodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	// CodeMissingParam indicates a required request parameter is absent.
	CodeMissingParam ErrorCode = "MISSING_PARAM"
	// CodeNotFound indicates the requested resource does not exist.
	CodeNotFound ErrorCode = "NOT_FOUND"
	// CodeEmailExists indicates a registration attempt with a taken email.
	CodeEmailExists ErrorCode = "EMAIL_EXISTS"
)

// Rate limiting (429).
const (
	// CodeUserRateLimit indicates the per-identity sliding window is full.
	CodeUserRateLimit ErrorCode = "USER_RATE_LIMIT"
	// CodeTooManyRequests indicates an IP-keyed rate limit was hit.
	CodeTooManyRequests ErrorCode = "TOO_MANY_REQUESTS"
)

// Server errors (500).
const (
	// CodeInternal indicates an unexpected failure; detail is withheld.
	CodeInternal ErrorCode = "INTERNAL_ERROR"
	// CodeAuthServiceError indicates an infrastructure failure during
	// authentication, distinct from invalid credentials.
	CodeAuthServiceError ErrorCode = "AUTH_SERVICE_ERROR"
)
