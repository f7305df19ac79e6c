package repository

import "errors"

var (
	ErrInvalidDispatchData = errors.New("invalid dispatch record data")
)
