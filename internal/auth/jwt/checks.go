package jwt

import (
	"fmt"
	"time"
)

// Claim names accepted as checks.
const (
	CheckTyp = "typ"
	CheckAlg = "alg"
	CheckIss = "iss"
	CheckIat = "iat"
	CheckNbf = "nbf"
	CheckExp = "exp"
	CheckKid = "kid"
)

// Check is a single requested claim check. A check makes its claim
// required; a claim with no check is neither required nor validated.
// Value carries the expected value and is meaningful only for iss.
type Check struct {
	Claim string
	Value string
}

// ParseChecks builds a check set from claim names. The iss check takes
// the expected issuer as its value and is rejected when issuer is empty.
func ParseChecks(names []string, issuer string) ([]Check, error) {
	checks := make([]Check, 0, len(names))
	for _, name := range names {
		switch name {
		case CheckTyp, CheckAlg, CheckIat, CheckNbf, CheckExp, CheckKid:
			checks = append(checks, Check{Claim: name})
		case CheckIss:
			if issuer == "" {
				return nil, fmt.Errorf("iss check requires an expected issuer")
			}
			checks = append(checks, Check{Claim: CheckIss, Value: issuer})
		default:
			return nil, fmt.Errorf("unknown check: %s", name)
		}
	}
	return checks, nil
}

// hasCheck returns the requested check for a claim, if any.
func hasCheck(checks []Check, claim string) (Check, bool) {
	for _, c := range checks {
		if c.Claim == claim {
			return c, true
		}
	}
	return Check{}, false
}

// ValidateHeader runs the requested header checks. Evaluation order is
// fixed: typ, then alg. The first failing check aborts with its error.
func ValidateHeader(header Claims, checks []Check) error {
	if _, ok := hasCheck(checks, CheckTyp); ok {
		typ, present := header[CheckTyp]
		if !present {
			return ErrMissingTyp
		}
		if s, ok := typ.(string); !ok || s != "JWT" {
			return ErrInvalidTyp
		}
	}

	if _, ok := hasCheck(checks, CheckAlg); ok {
		alg := header.GetString(CheckAlg)
		if alg == "" {
			return ErrMissingAlg
		}
		if _, _, err := ResolveAlg(alg); err != nil {
			return ErrInvalidAlg
		}
	}

	return nil
}

// ValidatePayload runs the requested payload checks against now.
// Evaluation order is fixed: iss, iat, nbf, exp. The first failing check
// aborts with its error.
//
// The iat check verifies presence and integer type only; it is never
// compared against the clock. The nbf and exp comparisons use strict
// inequality on whole seconds, so a claim equal to the current second
// fails.
func ValidatePayload(payload Claims, checks []Check, now time.Time) error {
	if check, ok := hasCheck(checks, CheckIss); ok {
		iss, present := payload[CheckIss]
		if !present {
			return ErrMissingIss
		}
		if s, ok := iss.(string); !ok || s != check.Value {
			return ErrInvalidIss
		}
	}

	if _, ok := hasCheck(checks, CheckIat); ok {
		iat, present := payload[CheckIat]
		if !present {
			return ErrMissingIat
		}
		if _, ok := claimInt64(iat); !ok {
			return ErrInvalidIat
		}
	}

	if _, ok := hasCheck(checks, CheckNbf); ok {
		nbf, present := payload[CheckNbf]
		if !present {
			return ErrMissingNbf
		}
		if v, ok := claimInt64(nbf); !ok || v >= now.Unix() {
			return ErrNbfNotInPast
		}
	}

	if _, ok := hasCheck(checks, CheckExp); ok {
		exp, present := payload[CheckExp]
		if !present {
			return ErrMissingExp
		}
		if v, ok := claimInt64(exp); !ok || v <= now.Unix() {
			return ErrExpNotInFuture
		}
	}

	return nil
}
