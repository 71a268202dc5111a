package jwt

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndVerifyHMAC(t *testing.T) {
	v, err := NewVerifier(Options{HMACSecret: "secret", Issuer: "https://id.test", Audience: "journal"})
	require.NoError(t, err)

	token, err := Sign("secret", SignOptions{
		Subject:  "user_123",
		Email:    "a@example.com",
		Issuer:   "https://id.test",
		Audience: "journal",
		TTL:      time.Minute,
	})
	require.NoError(t, err)

	claims, err := v.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "user_123", claims.Subject)
	assert.Equal(t, "a@example.com", claims.Email)
}

func TestVerifyRejectsWrongIssuerAndSecret(t *testing.T) {
	v, err := NewVerifier(Options{HMACSecret: "secret", Issuer: "https://id.test"})
	require.NoError(t, err)

	wrongIssuer, err := Sign("secret", SignOptions{Subject: "u", Issuer: "https://evil.test"})
	require.NoError(t, err)
	_, err = v.Parse(wrongIssuer)
	assert.Error(t, err)

	wrongSecret, err := Sign("other", SignOptions{Subject: "u", Issuer: "https://id.test"})
	require.NoError(t, err)
	_, err = v.Parse(wrongSecret)
	assert.Error(t, err)
}

func TestVerifyRejectsExpired(t *testing.T) {
	v, err := NewVerifier(Options{HMACSecret: "secret"})
	require.NoError(t, err)

	claims := Claims{RegisteredClaims: jwtlib.RegisteredClaims{
		Subject:   "u",
		ExpiresAt: jwtlib.NewNumericDate(time.Now().Add(-time.Hour)),
	}}
	token, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = v.Parse(token)
	assert.ErrorIs(t, err, jwtlib.ErrTokenExpired)
}

func TestVerifyRS256(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	pemText := string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))

	v, err := NewVerifier(Options{PublicKeyPEM: pemText})
	require.NoError(t, err)

	claims := Claims{
		Email: "rs@example.com",
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   "idp|42",
			ExpiresAt: jwtlib.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}
	token, err := jwtlib.NewWithClaims(jwtlib.SigningMethodRS256, claims).SignedString(key)
	require.NoError(t, err)

	parsed, err := v.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "idp|42", parsed.Subject)

	// An HS256 token must not verify against an RSA-only verifier.
	hs, err := Sign("whatever", SignOptions{Subject: "idp|42"})
	require.NoError(t, err)
	_, err = v.Parse(hs)
	assert.Error(t, err)
}

func TestNewVerifierRequiresKey(t *testing.T) {
	_, err := NewVerifier(Options{})
	assert.ErrorIs(t, err, ErrNoVerificationKey)

	_, err = Sign("", SignOptions{Subject: "u"})
	assert.ErrorIs(t, err, ErrNoVerificationKey)
}
