package service

import "errors"

// Service layer errors mapped to HTTP statuses by the handlers
var (
	// Not found
	ErrUserNotFound         = errors.New("user not found")
	ErrRequestNotFound      = errors.New("request not found")
	ErrCurveNotFound        = errors.New("curve not found")
	ErrContentNotFound      = errors.New("content not found")
	ErrValueTypeNotFound    = errors.New("value type not found")
	ErrQuestionaireNotFound = errors.New("questionaire not found")

	// Permission / quota
	ErrForbidden       = errors.New("operation not permitted")
	ErrTooManyCurveIDs = errors.New("too many curve ids requested")

	// Conflicts
	ErrContentProtected   = errors.New("content is referenced by curves")
	ErrCurveLocked        = errors.New("curve is locked")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrNameSpaceExhausted = errors.New("could not generate a unique name")

	// Validation
	ErrNoCurveIDs         = errors.New("no curve ids given")
	ErrInvalidAxisType    = errors.New("invalid axis type")
	ErrInvalidReference   = errors.New("referenced content, value type or questionaire does not exist")
	ErrInvalidCredentials = errors.New("invalid username or password")
)
