package models

import "time"

// RevokedToken records a logged-out access token by its jti. ExpiresAt
// mirrors the token's own expiry; after it the record can be pruned.
type RevokedToken struct {
	TokenID   string
	ExpiresAt time.Time
	RevokedAt time.Time
}
