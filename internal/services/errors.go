// Package services defines the business logic of the product-request
// pipeline: image intake, record assembly, persistence with best-effort relay,
// notification hand-off, and the server-side ingest of relayed records.
// This file centralizes service-level error values so that they can be
// consistently returned by service methods and checked by callers.
//
// Translation into user-facing text or HTTP status codes is performed by the
// host (terminal shell) or the handler layer.
package services

import "errors"

// Image intake errors.
var (
	// ErrImageTooLarge is returned when a selected file exceeds the
	// configured size cap.
	ErrImageTooLarge = errors.New("image exceeds size limit")

	// ErrNotAnImage is returned when a selected file's declared content type
	// is not an image type.
	ErrNotAnImage = errors.New("file is not an image")
)

// Submission errors.
var (
	// ErrSubmitInFlight is returned when Submit is called while a previous
	// submission is still running.
	ErrSubmitInFlight = errors.New("a submission is already in progress")

	// ErrStagePanic wraps a panic recovered from a pipeline stage.
	ErrStagePanic = errors.New("submission stage panicked")
)

// Ingest errors.
var (
	// ErrClientRequestNotFound indicates that the requested relayed record
	// does not exist.
	ErrClientRequestNotFound = errors.New("client request not found")

	// ErrDuplicateRecord is returned when a relayed record id is already
	// stored and the request carried no matching idempotency key.
	ErrDuplicateRecord = errors.New("record already received")
)
