package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// VerificationTokenTTL is enforced by a TTL index on Expires.
const VerificationTokenTTL = 24 * time.Hour

// VerificationToken binds a user to a single-use magic-link secret.
// Only the bcrypt hash of the secret is stored.
type VerificationToken struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	UserID    string        `bson:"userId"`
	TokenHash string        `bson:"token"`
	// Expires holds the creation time; the store evicts the document
	// VerificationTokenTTL later.
	Expires time.Time `bson:"expires"`
}

// Stale reports whether the token outlived its TTL but was not yet evicted.
func (t *VerificationToken) Stale(now time.Time) bool {
	return now.After(t.Expires.Add(VerificationTokenTTL))
}
