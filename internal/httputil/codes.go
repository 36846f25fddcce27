package httputil

// Machine-readable error codes returned alongside error messages so clients
// can branch without parsing human-facing text.
const (
	CodeInvalidRequestBody        = "INVALID_REQUEST_BODY"
	CodeValidationFailed          = "VALIDATION_FAILED"
	CodeEmailAlreadyExists        = "EMAIL_ALREADY_EXISTS"
	CodeInvalidCredentials        = "INVALID_CREDENTIALS"
	CodeEmailNotVerified          = "EMAIL_NOT_VERIFIED"
	CodeInvalidVerificationToken  = "INVALID_VERIFICATION_TOKEN"
	CodeVerificationTokenRequired = "VERIFICATION_TOKEN_REQUIRED"
	CodeResendNotPossible         = "RESEND_NOT_POSSIBLE"
	CodeNotAuthenticated          = "NOT_AUTHENTICATED"
	CodePhotoRequired             = "PHOTO_REQUIRED"
	CodePhotoTooLarge             = "PHOTO_TOO_LARGE"
	CodeUnsupportedPhotoType      = "UNSUPPORTED_PHOTO_TYPE"
	CodeNotFound                  = "NOT_FOUND"
	CodeTooManyRequests           = "TOO_MANY_REQUESTS"
	CodeCooldownActive            = "COOLDOWN_ACTIVE"
	CodeInternalError             = "INTERNAL_ERROR"
)
