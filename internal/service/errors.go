package service

import "errors"

var (
	ErrValidation   = errors.New("validation")   // 400
	ErrNotFound     = errors.New("not found")    // 404
	ErrUnauthorized = errors.New("unauthorized") // 401
	ErrBadRequest   = errors.New("bad request")  // 400
	ErrConflict     = errors.New("conflict")     // 409
)
