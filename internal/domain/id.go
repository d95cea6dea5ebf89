package domain

import (
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NewID returns a fresh record identifier. Identifiers are ObjectIDs rendered
// as 24 hex characters regardless of the backing store, and sort in creation
// order within a process.
func NewID() string {
	return primitive.NewObjectID().Hex()
}

// ParseID checks that raw is a well-formed record identifier.
func ParseID(raw string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(raw))
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q is not a valid identifier", ErrInvalidID, raw)
	}
	return id, nil
}
