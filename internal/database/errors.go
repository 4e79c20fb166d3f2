package database

import "errors"

// ErrCounterNotFound is returned when an attempt is made to read or
// increment a counter record using a key that doesn't exist.
var ErrCounterNotFound = errors.New("counter not found")
