// Package jwt provides JSON Web Token validation and signing together
// with a cached set of remote verification keys.
//
// This package implements token decoding with configurable claim checks,
// signature verification across the RSA, ECDSA, and HMAC families, JWKS
// fetching with background refresh, and Prometheus metrics for all of it.
//
// # Validation
//
// The Validator decodes a token, runs the requested checks, resolves the
// verification key through a KeyResolver, and verifies the signature:
//
//	validator := jwt.NewValidator(jwt.WithValidatorLogger(logger))
//
//	claims, err := validator.Decode(ctx, token, checks, cache)
//	if err != nil {
//	    // Handle invalid token
//	}
//
// Checks are opt-in: a claim without a check is neither required nor
// validated, but the signature is always verified.
//
// # Key cache
//
// The KeyCache fetches a JWKS document in the background and serves
// synchronous lookups from an atomically replaced snapshot:
//
//	cache := jwt.NewKeyCache(url, jwt.WithKeyCacheLogger(logger))
//	cache.Start(ctx)
//	defer cache.Stop()
//
// The cache implements KeyResolver, so it plugs directly into Decode.
package jwt
