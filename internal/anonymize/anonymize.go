// Package anonymize derives pseudonymous student identifiers.
//
// A pseudonym is the first PseudonymLength hex characters of the SHA-256
// digest of the raw identifier. No salt is applied: the same identifier maps
// to the same pseudonym in every run, which lets exported results be matched
// back against a previously saved mapping table.
package anonymize

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/sungjoonyoung/SJY-Dongguk-Graduation-FE/internal/types"
)

// PseudonymLength is the number of hex characters kept from the digest.
const PseudonymLength = 12

// EncryptID returns the pseudonym for a raw student identifier.
// An empty identifier maps to types.UnknownID and is not hashed.
func EncryptID(studentID string) string {
	if studentID == "" {
		return types.UnknownID
	}
	sum := sha256.Sum256([]byte(studentID))
	return hex.EncodeToString(sum[:])[:PseudonymLength]
}
