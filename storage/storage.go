package storage

import "errors"

var (
	ErrNotFound = errors.New("session not found")
	ErrExists   = errors.New("session id already in use")
)
