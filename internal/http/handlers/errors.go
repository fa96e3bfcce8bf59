// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// Codes are lowercase snake_case strings passed to fail() together with the
// HTTP status. Clients branch on the code; the message is for display only.
//
// Example response:
//
//	{
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "duplicate_record",
//	  "message": "record already stored"
//	}
package handlers

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeNotFound         = "not_found"
	ErrCodeConflict         = "conflict"
	ErrCodeRateLimited      = "too_many_requests"
	ErrCodeInternal         = "internal_error"
	ErrCodeBodyTooLarge     = "body_too_large"
	ErrCodeMethodNotAllowed = "method_not_allowed"

	// Relay endpoint:
	ErrCodeDuplicateRecord = "duplicate_record"
	ErrCodeInvalidRecord   = "invalid_record"
	ErrCodeStoreFailed     = "store_failed"
	ErrCodeListFailed      = "list_failed"
)
