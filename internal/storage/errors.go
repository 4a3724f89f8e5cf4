package storage

import "errors"

var (
	ErrNotFound          = errors.New("transaction not found")
	ErrEmptyCredential   = errors.New("credential is empty")
	ErrInvalidCredential = errors.New("credential is not a JSON object")
)
