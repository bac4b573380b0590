// Package auth wires token validation into the HTTP request path.
package auth

import (
	"errors"
	"net/http"
	"strings"
)

// Common errors for token extraction.
var (
	ErrNoTokenFound  = errors.New("no token found")
	ErrMissingHeader = errors.New("missing authorization header")
	ErrInvalidPrefix = errors.New("invalid authorization prefix")
)

// TokenExtractor extracts a bearer token from an HTTP request.
type TokenExtractor interface {
	Extract(r *http.Request) (string, error)
}

// HeaderExtractor extracts tokens from an HTTP header.
type HeaderExtractor struct {
	header string
	prefix string
}

// NewHeaderExtractor creates a new header extractor.
// If header is empty, it defaults to "Authorization".
// If prefix is empty, it defaults to "Bearer ".
func NewHeaderExtractor(header, prefix string) *HeaderExtractor {
	if header == "" {
		header = "Authorization"
	}
	if prefix == "" {
		prefix = "Bearer "
	}
	return &HeaderExtractor{
		header: header,
		prefix: prefix,
	}
}

// Extract extracts the token from the header. The prefix comparison is
// case-insensitive.
func (e *HeaderExtractor) Extract(r *http.Request) (string, error) {
	authHeader := r.Header.Get(e.header)
	if authHeader == "" {
		return "", ErrMissingHeader
	}

	if len(authHeader) < len(e.prefix) ||
		!strings.EqualFold(authHeader[:len(e.prefix)], e.prefix) {
		return "", ErrInvalidPrefix
	}

	return strings.TrimSpace(authHeader[len(e.prefix):]), nil
}

// QueryExtractor extracts tokens from a query parameter.
type QueryExtractor struct {
	param string
}

// NewQueryExtractor creates a new query parameter extractor.
func NewQueryExtractor(param string) *QueryExtractor {
	return &QueryExtractor{param: param}
}

// Extract extracts the token from the query parameter.
func (e *QueryExtractor) Extract(r *http.Request) (string, error) {
	token := r.URL.Query().Get(e.param)
	if token == "" {
		return "", ErrNoTokenFound
	}
	return token, nil
}

// CompositeExtractor tries multiple extractors in order.
type CompositeExtractor struct {
	extractors []TokenExtractor
}

// NewCompositeExtractor creates a new composite extractor.
func NewCompositeExtractor(extractors ...TokenExtractor) *CompositeExtractor {
	return &CompositeExtractor{extractors: extractors}
}

// Extract tries each extractor in order and returns the first token found.
func (e *CompositeExtractor) Extract(r *http.Request) (string, error) {
	var lastErr error

	for _, extractor := range e.extractors {
		token, err := extractor.Extract(r)
		if err == nil && token != "" {
			return token, nil
		}
		lastErr = err
	}

	if lastErr != nil {
		return "", lastErr
	}
	return "", ErrNoTokenFound
}

// DefaultExtractor returns an extractor that checks the Authorization
// header with a Bearer prefix, then the access_token query parameter.
func DefaultExtractor() TokenExtractor {
	return NewCompositeExtractor(
		NewHeaderExtractor("Authorization", "Bearer "),
		NewQueryExtractor("access_token"),
	)
}
