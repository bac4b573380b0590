package jwt

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
)

// KeyRef identifies a cached verification key by JWK key type and key id.
type KeyRef struct {
	Kty string
	Kid string
}

// JSONWebKeySet represents a JSON Web Key Set document.
type JSONWebKeySet struct {
	Keys []JSONWebKey `json:"keys"`
}

// JSONWebKey represents a single published key.
type JSONWebKey struct {
	Kty string `json:"kty"`
	Kid string `json:"kid,omitempty"`
	Alg string `json:"alg,omitempty"`
	Use string `json:"use,omitempty"`

	// RSA public key components
	N string `json:"n,omitempty"`
	E string `json:"e,omitempty"`

	// EC public key components
	Crv string `json:"crv,omitempty"`
	X   string `json:"x,omitempty"`
	Y   string `json:"y,omitempty"`
}

// p256CoordinateSize is the byte length of a P-256 point coordinate.
const p256CoordinateSize = 32

// ParseKeySet parses a JWKS document into a (kty,kid)-keyed map of public
// keys. Only {alg:RS256, kty:RSA} and {alg:ES256, kty:EC, crv:P-256}
// entries are recognized; everything else is skipped without error, since
// a shared key set may publish keys for consumers with other algorithm
// needs. It fails only when the document itself is not valid JSON.
func ParseKeySet(body []byte) (map[KeyRef]crypto.PublicKey, error) {
	var set JSONWebKeySet
	if err := json.Unmarshal(body, &set); err != nil {
		return nil, fmt.Errorf("failed to parse key set: %w", err)
	}

	keys := make(map[KeyRef]crypto.PublicKey, len(set.Keys))
	for _, jwk := range set.Keys {
		key, err := parseJWK(jwk)
		if err != nil || key == nil {
			continue
		}
		keys[KeyRef{Kty: jwk.Kty, Kid: jwk.Kid}] = key
	}

	return keys, nil
}

// parseJWK converts a recognized JWK entry to a public key. It returns
// (nil, nil) for entries outside the supported alg/kty pairs.
func parseJWK(jwk JSONWebKey) (crypto.PublicKey, error) {
	switch {
	case jwk.Alg == AlgRS256 && jwk.Kty == "RSA":
		return parseRSAKey(jwk)
	case jwk.Alg == AlgES256 && jwk.Kty == "EC" && jwk.Crv == "P-256":
		return parseECKey(jwk)
	default:
		return nil, nil
	}
}

// parseRSAKey decodes the modulus and exponent as big-endian unsigned
// integers from base64url.
func parseRSAKey(jwk JSONWebKey) (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(jwk.N)
	if err != nil {
		return nil, fmt.Errorf("failed to decode modulus: %w", err)
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(jwk.E)
	if err != nil {
		return nil, fmt.Errorf("failed to decode exponent: %w", err)
	}

	e := 0
	for _, b := range eBytes {
		e = e<<8 + int(b)
	}

	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nBytes),
		E: e,
	}, nil
}

// parseECKey reconstructs a P-256 public key from its 32-byte point
// coordinates.
func parseECKey(jwk JSONWebKey) (*ecdsa.PublicKey, error) {
	xBytes, err := base64.RawURLEncoding.DecodeString(jwk.X)
	if err != nil {
		return nil, fmt.Errorf("failed to decode x coordinate: %w", err)
	}
	yBytes, err := base64.RawURLEncoding.DecodeString(jwk.Y)
	if err != nil {
		return nil, fmt.Errorf("failed to decode y coordinate: %w", err)
	}
	if len(xBytes) != p256CoordinateSize || len(yBytes) != p256CoordinateSize {
		return nil, fmt.Errorf("P-256 coordinates must be %d bytes", p256CoordinateSize)
	}

	return &ecdsa.PublicKey{
		Curve: elliptic.P256(),
		X:     new(big.Int).SetBytes(xBytes),
		Y:     new(big.Int).SetBytes(yBytes),
	}, nil
}
