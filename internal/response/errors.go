package response

import "net/http"

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrEmailTaken         ErrCode = "EMAIL_TAKEN"
	ErrSessionInvalidated ErrCode = "SESSION_INVALIDATED"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation           ErrCode = "VALIDATION_ERROR"
	ErrInvalidID            ErrCode = "INVALID_ID"
	ErrAttendedExceedsTotal ErrCode = "ATTENDED_EXCEEDS_TOTAL"
	ErrEmptySubjectName     ErrCode = "EMPTY_SUBJECT_NAME"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound        ErrCode = "NOT_FOUND"
	ErrSubjectNotFound ErrCode = "SUBJECT_NOT_FOUND"
	ErrFriendNotFound  ErrCode = "FRIEND_NOT_FOUND"

	// ─── Friends ───────────────────────────────────────────────────────
	ErrInvalidFriendCode ErrCode = "INVALID_FRIEND_CODE"
	ErrUserNotFound      ErrCode = "USER_NOT_FOUND"
	ErrCannotAddSelf     ErrCode = "CANNOT_ADD_SELF"
	ErrAlreadyFriends    ErrCode = "ALREADY_FRIENDS"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	case ErrInvalidCredentials:
		return "Invalid email or password."
	case ErrEmailTaken:
		return "An account with this email already exists."
	case ErrSessionInvalidated:
		return "Your session has ended. Please sign in again."
	case ErrTokenRequired:
		return "Authentication token is required."
	case ErrTokenInvalid:
		return "Authentication token is invalid."

	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrAttendedExceedsTotal:
		return "Attended classes cannot be more than total classes."
	case ErrEmptySubjectName:
		return "Subject name must not be empty."

	case ErrNotFound:
		return "Resource not found."
	case ErrSubjectNotFound:
		return "Subject not found."
	case ErrFriendNotFound:
		return "Friend not found."

	case ErrInvalidFriendCode:
		return "Friend code must be exactly 5 digits (e.g., 12345)."
	case ErrUserNotFound:
		return "No user found with this friend code."
	case ErrCannotAddSelf:
		return "You cannot add yourself as a friend."
	case ErrAlreadyFriends:
		return "This user is already in your friends list."

	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	case ErrInternal:
		return "Internal server error."
	default:
		return "Unexpected error."
	}
}

// StatusFor returns the HTTP status normally paired with a code.
func StatusFor(code ErrCode) int {
	switch code {
	case ErrInvalidCredentials, ErrSessionInvalidated, ErrTokenRequired, ErrTokenInvalid:
		return http.StatusUnauthorized
	case ErrValidation, ErrInvalidID, ErrAttendedExceedsTotal, ErrEmptySubjectName, ErrInvalidFriendCode, ErrCannotAddSelf:
		return http.StatusBadRequest
	case ErrNotFound, ErrSubjectNotFound, ErrFriendNotFound, ErrUserNotFound:
		return http.StatusNotFound
	case ErrEmailTaken, ErrAlreadyFriends:
		return http.StatusConflict
	case ErrRateLimitExceeded:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
