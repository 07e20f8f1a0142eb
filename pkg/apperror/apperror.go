package apperror

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Error is an operational error: an anticipated, user-facing failure that
// carries the HTTP status to respond with. Anything that is not an *Error is
// treated as a programmer fault and rendered as a generic 500 in production.
type Error struct {
	Code    int
	Message string
	Err     error // optional cause, kept for development rendering
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

func New(code int, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Wrap(err error, code int, message string) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

func BadRequest(message string) *Error   { return New(http.StatusBadRequest, message) }
func Unauthorized(message string) *Error { return New(http.StatusUnauthorized, message) }
func Forbidden(message string) *Error    { return New(http.StatusForbidden, message) }
func NotFound(message string) *Error     { return New(http.StatusNotFound, message) }
func TooManyRequests(message string) *Error {
	return New(http.StatusTooManyRequests, message)
}

func internal(err error) *Error {
	return &Error{Code: http.StatusInternalServerError, Message: "Something went wrong", Err: err}
}

// StatusWord is the envelope status string for a code: "fail" for client
// errors, "error" otherwise.
func StatusWord(code int) string {
	if code >= 400 && code < 500 {
		return "fail"
	}
	return "error"
}

// Postgres error codes worth translating for clients.
const (
	pgUniqueViolation = "23505"
	pgInvalidText     = "22P02"
)

// Normalize maps any failure to an *Error plus an operational flag. Known
// driver, token and validation failures become client-facing errors; the rest
// flatten to a generic 500 with the cause retained for development output.
func Normalize(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fe.Field()+" "+fieldMessage(fe))
		}
		return Wrap(err, http.StatusBadRequest, strings.Join(msgs, ". ")), true
	}

	// Token checks come before the json ones: jwt/v5 wraps the decoder's
	// json error inside ErrTokenMalformed, and a bad bearer token is a 401,
	// not a bad payload.
	if errors.Is(err, jwt.ErrTokenExpired) {
		return Wrap(err, http.StatusUnauthorized, "Your session has expired, please login again"), true
	}
	if errors.Is(err, jwt.ErrTokenMalformed) || errors.Is(err, jwt.ErrTokenSignatureInvalid) ||
		errors.Is(err, jwt.ErrTokenUnverifiable) || errors.Is(err, jwt.ErrTokenNotValidYet) {
		return Wrap(err, http.StatusUnauthorized, "Invalid authentication token, please login again"), true
	}

	var syn *json.SyntaxError
	var typ *json.UnmarshalTypeError
	if errors.As(err, &syn) || errors.As(err, &typ) {
		return Wrap(err, http.StatusBadRequest, "Invalid request payload"), true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return Wrap(err, http.StatusBadRequest, duplicateMessage(pgErr)), true
		case pgInvalidText:
			return Wrap(err, http.StatusBadRequest, "Invalid identifier"), true
		}
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return Wrap(err, http.StatusNotFound, "Resource not found"), true
	}

	return internal(err), false
}

// duplicateMessage turns a unique-violation constraint name like
// "dogs_name_key" into "The name already exists".
func duplicateMessage(pgErr *pgconn.PgError) string {
	name := pgErr.ConstraintName
	if name == "" {
		return "Duplicate value"
	}
	name = strings.TrimSuffix(name, "_key")
	name = strings.TrimSuffix(name, "_idx")
	if i := strings.Index(name, "_"); i >= 0 && i+1 < len(name) {
		name = name[i+1:]
	}
	return fmt.Sprintf("The %s already exists", name)
}

// fieldMessage keeps validation output short; only the tags used by the
// request DTOs need friendly wording.
func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "min":
		return "must have at least " + fe.Param() + " characters"
	case "max":
		return "must have at most " + fe.Param() + " characters"
	case "eqfield":
		return "must match " + fe.Param()
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "pwd":
		return "must have at least 8 characters"
	default:
		if fe.Param() != "" {
			return fmt.Sprintf("failed on '%s=%s'", fe.Tag(), fe.Param())
		}
		return fmt.Sprintf("failed on '%s'", fe.Tag())
	}
}
