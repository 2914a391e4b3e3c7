// Package repository contains the data access layer.  Error types
// defined here are shared by every repository so handlers can map
// storage outcomes onto the response envelope: NotFoundError becomes a
// 404 fail, ConflictError a 400 fail with a specific message, and any
// other error a 500 with the underlying detail.
package repository

import (
	"errors"
	"strings"
)

// ErrEmailExists is returned when a registration collides with an
// existing email.
var ErrEmailExists = errors.New("email already exists")

// NotFoundError reports that a referenced entity does not exist.
// Entity is the display name used in the response message, e.g.
// "Produit" yields "Produit not found".
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string { return e.Entity + " not found" }

// NotFound builds a NotFoundError for the given entity name.
func NotFound(entity string) *NotFoundError { return &NotFoundError{Entity: entity} }

// ConflictError reports a unique-constraint or duplicate-association
// violation. Message is returned verbatim to the client.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// MySQL error-number probes.  The driver error text carries the server
// error code; matching on it avoids importing the driver's error type
// into every repository.
func isDuplicateErr(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1062")
}

func isFKErr(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1452")
}
