// Package model holds small domain helpers shared across packages.
package model

import "github.com/oklog/ulid/v2"

// NewID generates a new ULID string for use as a session identifier.
// ULIDs sort by creation time, which keeps log correlation cheap.
func NewID() string {
	return ulid.Make().String()
}
