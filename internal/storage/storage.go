package storage

import "errors"

var (
	ErrNotFound     = errors.New("booking not found")
	ErrUnauthorized = errors.New("password does not match")
)
