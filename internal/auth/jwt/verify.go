package jwt

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/hmac"
	"crypto/rand"
	"crypto/rsa"
	"math/big"
)

// Sign produces a signature over signingInput using the given algorithm.
// RSA expects *rsa.PrivateKey, ECDSA expects *ecdsa.PrivateKey, and HMAC
// expects the shared secret as []byte.
func Sign(alg string, signingInput []byte, key crypto.PrivateKey) ([]byte, error) {
	family, hash, err := ResolveAlg(alg)
	if err != nil {
		return nil, err
	}

	switch family {
	case FamilyRSA:
		return signRSA(signingInput, key, hash)
	case FamilyECDSA:
		return signECDSA(signingInput, key, hash)
	default:
		return signHMAC(signingInput, key, hash)
	}
}

// VerifySignature verifies a signature over signingInput using the given
// algorithm. Asymmetric mismatches yield ErrBadSignature, symmetric
// mismatches ErrBadHmac.
func VerifySignature(alg string, signingInput, signature []byte, key crypto.PublicKey) error {
	family, hash, err := ResolveAlg(alg)
	if err != nil {
		return err
	}

	switch family {
	case FamilyRSA:
		return verifyRSA(signingInput, signature, key, hash)
	case FamilyECDSA:
		return verifyECDSA(signingInput, signature, key, hash)
	default:
		return verifyHMAC(signingInput, signature, key, hash)
	}
}

func hashInput(hash crypto.Hash, input []byte) []byte {
	h := hash.New()
	h.Write(input)
	return h.Sum(nil)
}

func signRSA(signingInput []byte, key crypto.PrivateKey, hash crypto.Hash) ([]byte, error) {
	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, NewSigningError("key is not an RSA private key", ErrInvalidKey)
	}

	signature, err := rsa.SignPKCS1v15(rand.Reader, rsaKey, hash, hashInput(hash, signingInput))
	if err != nil {
		return nil, NewSigningError("RSA signing failed", err)
	}
	return signature, nil
}

func verifyRSA(signingInput, signature []byte, key crypto.PublicKey, hash crypto.Hash) error {
	rsaKey, ok := key.(*rsa.PublicKey)
	if !ok {
		return NewValidationError("key is not an RSA public key", ErrInvalidKey)
	}

	if err := rsa.VerifyPKCS1v15(rsaKey, hash, hashInput(hash, signingInput), signature); err != nil {
		return ErrBadSignature
	}
	return nil
}

// signECDSA produces a JOSE signature: r and s big-endian, each padded to
// the curve byte size, concatenated.
func signECDSA(signingInput []byte, key crypto.PrivateKey, hash crypto.Hash) ([]byte, error) {
	ecdsaKey, ok := key.(*ecdsa.PrivateKey)
	if !ok {
		return nil, NewSigningError("key is not an ECDSA private key", ErrInvalidKey)
	}

	r, s, err := ecdsa.Sign(rand.Reader, ecdsaKey, hashInput(hash, signingInput))
	if err != nil {
		return nil, NewSigningError("ECDSA signing failed", err)
	}

	keySize := curveByteSize(ecdsaKey.Curve.Params().BitSize)
	signature := make([]byte, 2*keySize)
	r.FillBytes(signature[:keySize])
	s.FillBytes(signature[keySize:])
	return signature, nil
}

func verifyECDSA(signingInput, signature []byte, key crypto.PublicKey, hash crypto.Hash) error {
	ecdsaKey, ok := key.(*ecdsa.PublicKey)
	if !ok {
		return NewValidationError("key is not an ECDSA public key", ErrInvalidKey)
	}

	keySize := curveByteSize(ecdsaKey.Curve.Params().BitSize)
	if len(signature) != 2*keySize {
		return ErrBadSignature
	}

	r := new(big.Int).SetBytes(signature[:keySize])
	s := new(big.Int).SetBytes(signature[keySize:])

	if !ecdsa.Verify(ecdsaKey, hashInput(hash, signingInput), r, s) {
		return ErrBadSignature
	}
	return nil
}

func signHMAC(signingInput []byte, key crypto.PrivateKey, hash crypto.Hash) ([]byte, error) {
	secret, ok := key.([]byte)
	if !ok {
		return nil, NewSigningError("key is not an HMAC secret", ErrInvalidKey)
	}

	mac := hmac.New(hash.New, secret)
	mac.Write(signingInput)
	return mac.Sum(nil), nil
}

func verifyHMAC(signingInput, signature []byte, key crypto.PublicKey, hash crypto.Hash) error {
	secret, ok := key.([]byte)
	if !ok {
		return NewValidationError("key is not an HMAC secret", ErrInvalidKey)
	}

	mac := hmac.New(hash.New, secret)
	mac.Write(signingInput)

	// hmac.Equal is constant time.
	if !hmac.Equal(signature, mac.Sum(nil)) {
		return ErrBadHmac
	}
	return nil
}

func curveByteSize(bits int) int {
	size := bits / 8
	if bits%8 > 0 {
		size++
	}
	return size
}
