package services

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// DeriveIdentifier computes the content-addressed identifier for one
// (activity, recipient) pair: SHA-256 over the raw concatenation of the
// activity ID and the trimmed name and email, hex-encoded lowercase.
//
// The concatenation itself is the canonical form. Changing the trimming, the
// ordering, or the hash function invalidates every previously issued
// identifier and must be treated as a breaking migration. Callers reject
// empty name/email before deriving; this function does not validate.
func DeriveIdentifier(activityID, name, email string) string {
	sum := sha256.Sum256([]byte(activityID + strings.TrimSpace(name) + strings.TrimSpace(email)))
	return hex.EncodeToString(sum[:])
}

// VerificationURL builds the public verification link embedded in each
// certificate. The /certs/<identifier> path shape is frozen: documents
// already in circulation carry it, so only the host may vary.
func VerificationURL(host, identifier string) string {
	return "https://" + strings.TrimSpace(host) + "/certs/" + identifier
}
