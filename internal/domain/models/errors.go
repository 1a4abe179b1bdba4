package models

import "errors"

// ErrNotFound indicates the requested record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate indicates a record with the same identifier already exists.
var ErrDuplicate = errors.New("record already exists")
