package auth

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/clearway/tokengate/internal/auth/jwt"
	"github.com/clearway/tokengate/internal/observability"
)

// ClaimsContextKey is the gin context key under which validated claims
// are stored.
const ClaimsContextKey = "jwt_claims"

// Middleware authenticates requests by validating the bearer token.
// The check configuration can be swapped at runtime for config hot reload.
type Middleware struct {
	validator jwt.Validator
	resolver  jwt.KeyResolver
	extractor TokenExtractor
	logger    observability.Logger

	mu     sync.RWMutex
	checks []jwt.Check
}

// MiddlewareOption is a functional option for the middleware.
type MiddlewareOption func(*Middleware)

// WithMiddlewareLogger sets the logger.
func WithMiddlewareLogger(logger observability.Logger) MiddlewareOption {
	return func(m *Middleware) {
		m.logger = logger
	}
}

// WithExtractor sets the token extractor.
func WithExtractor(extractor TokenExtractor) MiddlewareOption {
	return func(m *Middleware) {
		m.extractor = extractor
	}
}

// WithChecks sets the initial claim checks.
func WithChecks(checks []jwt.Check) MiddlewareOption {
	return func(m *Middleware) {
		m.checks = checks
	}
}

// NewMiddleware creates an authentication middleware that validates
// tokens with validator, resolving keys through resolver.
func NewMiddleware(validator jwt.Validator, resolver jwt.KeyResolver, opts ...MiddlewareOption) *Middleware {
	m := &Middleware{
		validator: validator,
		resolver:  resolver,
		extractor: DefaultExtractor(),
		logger:    observability.NopLogger(),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// SetChecks replaces the claim checks. Safe for concurrent use with
// in-flight requests.
func (m *Middleware) SetChecks(checks []jwt.Check) {
	m.mu.Lock()
	m.checks = checks
	m.mu.Unlock()
}

// Checks returns the current claim checks.
func (m *Middleware) Checks() []jwt.Check {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.checks
}

// Handler returns the gin handler performing authentication.
func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := m.extractor.Extract(c.Request)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "missing bearer token",
			})
			return
		}

		claims, err := m.validator.Decode(c.Request.Context(), token, m.Checks(), m.resolver)
		if err != nil {
			m.logger.Debug("token rejected", observability.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid token",
			})
			return
		}

		c.Set(ClaimsContextKey, claims)
		c.Next()
	}
}

// ClaimsFromContext returns the validated claims stored by the middleware.
func ClaimsFromContext(c *gin.Context) (jwt.Claims, bool) {
	v, ok := c.Get(ClaimsContextKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(jwt.Claims)
	return claims, ok
}
