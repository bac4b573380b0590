package jwt

import "crypto"

// Family identifies a signature verification family.
type Family int

// Verification families.
const (
	FamilyRSA Family = iota
	FamilyECDSA
	FamilyHMAC
)

// String returns the family name.
func (f Family) String() string {
	switch f {
	case FamilyRSA:
		return "RSA"
	case FamilyECDSA:
		return "ECDSA"
	case FamilyHMAC:
		return "HMAC"
	default:
		return "unknown"
	}
}

// KeyType returns the JWK key type that publishes verification keys for
// the family. HMAC secrets are shared out of band and have no JWK type.
func (f Family) KeyType() string {
	switch f {
	case FamilyRSA:
		return "RSA"
	case FamilyECDSA:
		return "EC"
	default:
		return ""
	}
}

// algDescriptor pairs a verification family with its hash function.
type algDescriptor struct {
	family Family
	hash   crypto.Hash
}

// algRegistry is the static dispatch table for the nine supported
// algorithm identifiers. Immutable for the life of the process.
var algRegistry = map[string]algDescriptor{
	AlgRS256: {FamilyRSA, crypto.SHA256},
	AlgRS384: {FamilyRSA, crypto.SHA384},
	AlgRS512: {FamilyRSA, crypto.SHA512},
	AlgES256: {FamilyECDSA, crypto.SHA256},
	AlgES384: {FamilyECDSA, crypto.SHA384},
	AlgES512: {FamilyECDSA, crypto.SHA512},
	AlgHS256: {FamilyHMAC, crypto.SHA256},
	AlgHS384: {FamilyHMAC, crypto.SHA384},
	AlgHS512: {FamilyHMAC, crypto.SHA512},
}

// ResolveAlg resolves an algorithm id to its verification family and hash
// function. It returns ErrInvalidAlgorithm for any other identifier.
func ResolveAlg(alg string) (Family, crypto.Hash, error) {
	desc, ok := algRegistry[alg]
	if !ok {
		return 0, 0, ErrInvalidAlgorithm
	}
	return desc.family, desc.hash, nil
}

// SupportedAlgorithms returns the supported algorithm identifiers.
func SupportedAlgorithms() []string {
	return []string{
		AlgRS256, AlgRS384, AlgRS512,
		AlgES256, AlgES384, AlgES512,
		AlgHS256, AlgHS384, AlgHS512,
	}
}
