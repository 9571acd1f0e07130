package model

import "errors"

// Item is the domain model for a stored record.
// ID is assigned by storage on create and never changes.
type Item struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ItemInput is the request body for create and update.
// Pointers distinguish an absent field from an empty one.
type ItemInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// ErrNameRequired is returned by Validate when the body has no name field.
var ErrNameRequired = errors.New("name is required")

// NewItemInput builds an input from plain values.
func NewItemInput(name, description string) ItemInput {
	return ItemInput{Name: &name, Description: &description}
}

// Validate only checks that name is present. An empty name is accepted.
func (in ItemInput) Validate() error {
	if in.Name == nil {
		return ErrNameRequired
	}
	return nil
}

// Normalize returns the values to store. A missing description becomes "".
func (in ItemInput) Normalize() (name, description string) {
	if in.Name != nil {
		name = *in.Name
	}
	if in.Description != nil {
		description = *in.Description
	}
	return name, description
}

// Health values reported by GET /api/health.
const (
	HealthOK             = "OK"
	HealthError          = "Error"
	DatabaseConnected    = "connected"
	DatabaseDisconnected = "disconnected"
)

// HealthStatus is the body of the health check.
type HealthStatus struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// ErrorBody is the wire shape of every error response.
type ErrorBody struct {
	Error string `json:"error"`
}
