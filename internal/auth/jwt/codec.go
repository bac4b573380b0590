package jwt

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"strings"
)

// SplitToken splits a compact token into its three base64url segments.
// It returns ErrMalformedToken unless exactly three segments result.
func SplitToken(token string) (header, payload, signature string, err error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return "", "", "", ErrMalformedToken
	}
	return parts[0], parts[1], parts[2], nil
}

// DecodeSegment base64url-decodes a header or payload segment and parses
// it as a JSON object. Numbers are preserved as json.Number so that
// integer claims survive without float conversion.
func DecodeSegment(segment string) (Claims, error) {
	data, err := base64.RawURLEncoding.DecodeString(segment)
	if err != nil {
		return nil, NewValidationError("failed to decode segment", ErrMalformedToken)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, NewValidationError("failed to parse segment", ErrMalformedToken)
	}

	obj, ok := value.(map[string]any)
	if !ok {
		return nil, ErrNotAnObject
	}
	return obj, nil
}

// decodeSignature base64url-decodes the signature segment.
func decodeSignature(segment string) ([]byte, error) {
	sig, err := base64.RawURLEncoding.DecodeString(segment)
	if err != nil {
		return nil, NewValidationError("failed to decode signature", ErrMalformedToken)
	}
	return sig, nil
}

// signFunc produces a signature over the signing input.
type signFunc func(signingInput []byte) ([]byte, error)

// encodeToken JSON-encodes the header and payload, joins the base64url
// segments with dots, and appends the base64url signature computed over
// "header.payload" by sign. Pure; no I/O.
func encodeToken(header, payload map[string]any, sign signFunc) (string, error) {
	headerJSON, err := json.Marshal(header)
	if err != nil {
		return "", NewSigningError("failed to encode header", err)
	}
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return "", NewSigningError("failed to encode payload", err)
	}

	signingInput := base64.RawURLEncoding.EncodeToString(headerJSON) +
		"." + base64.RawURLEncoding.EncodeToString(payloadJSON)

	signature, err := sign([]byte(signingInput))
	if err != nil {
		return "", err
	}

	return signingInput + "." + base64.RawURLEncoding.EncodeToString(signature), nil
}
