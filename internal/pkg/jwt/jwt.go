package jwt

import (
	"crypto"
	"errors"
	"fmt"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

var (
	ErrNoVerificationKey = errors.New("identity: no hmac secret or public key configured")
	ErrMissingSubject    = errors.New("identity: token has no subject")
)

// Claims is the identity-provider token payload. Subject carries the IdP's
// stable user id.
type Claims struct {
	Email string `json:"email,omitempty"`
	jwtlib.RegisteredClaims
}

// Options configures a Verifier.
type Options struct {
	Issuer       string
	Audience     string
	HMACSecret   string
	PublicKeyPEM string
}

// Verifier validates bearer tokens issued by the external identity provider.
type Verifier struct {
	secret    []byte
	publicKey crypto.PublicKey
	parser    *jwtlib.Parser
}

// NewVerifier builds a verifier from an HMAC secret, a PEM public key (RSA
// or ECDSA), or both.
func NewVerifier(opts Options) (*Verifier, error) {
	v := &Verifier{}
	if s := strings.TrimSpace(opts.HMACSecret); s != "" {
		v.secret = []byte(s)
	}
	if pemText := strings.TrimSpace(opts.PublicKeyPEM); pemText != "" {
		key, err := parsePublicKey([]byte(pemText))
		if err != nil {
			return nil, err
		}
		v.publicKey = key
	}
	if v.secret == nil && v.publicKey == nil {
		return nil, ErrNoVerificationKey
	}

	parserOpts := []jwtlib.ParserOption{
		jwtlib.WithValidMethods(v.validMethods()),
		jwtlib.WithExpirationRequired(),
		jwtlib.WithLeeway(30 * time.Second),
	}
	if opts.Issuer != "" {
		parserOpts = append(parserOpts, jwtlib.WithIssuer(opts.Issuer))
	}
	if opts.Audience != "" {
		parserOpts = append(parserOpts, jwtlib.WithAudience(opts.Audience))
	}
	v.parser = jwtlib.NewParser(parserOpts...)
	return v, nil
}

func parsePublicKey(pemBytes []byte) (crypto.PublicKey, error) {
	if key, err := jwtlib.ParseRSAPublicKeyFromPEM(pemBytes); err == nil {
		return key, nil
	}
	if key, err := jwtlib.ParseECPublicKeyFromPEM(pemBytes); err == nil {
		return key, nil
	}
	return nil, errors.New("identity: public key is neither RSA nor ECDSA PEM")
}

func (v *Verifier) validMethods() []string {
	var methods []string
	if v.secret != nil {
		methods = append(methods, "HS256", "HS384", "HS512")
	}
	if v.publicKey != nil {
		methods = append(methods, "RS256", "RS384", "RS512", "ES256", "ES384", "ES512")
	}
	return methods
}

// Parse validates a token string and returns its claims.
func (v *Verifier) Parse(tokenStr string) (*Claims, error) {
	token, err := v.parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwtlib.Token) (interface{}, error) {
		switch t.Method.(type) {
		case *jwtlib.SigningMethodHMAC:
			return v.secret, nil
		case *jwtlib.SigningMethodRSA, *jwtlib.SigningMethodECDSA:
			return v.publicKey, nil
		default:
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return nil, ErrMissingSubject
	}
	return claims, nil
}

// SignOptions describes a development token minted with the shared secret.
type SignOptions struct {
	Subject  string
	Email    string
	Issuer   string
	Audience string
	TTL      time.Duration
}

// Sign creates an HS256 token the Verifier accepts when configured with the
// same secret. Production tokens come from the identity provider.
func Sign(secret string, opts SignOptions) (string, error) {
	if strings.TrimSpace(secret) == "" {
		return "", ErrNoVerificationKey
	}
	if strings.TrimSpace(opts.Subject) == "" {
		return "", ErrMissingSubject
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}

	now := time.Now()
	claims := Claims{
		Email: opts.Email,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   opts.Subject,
			Issuer:    opts.Issuer,
			ExpiresAt: jwtlib.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwtlib.NewNumericDate(now),
		},
	}
	if opts.Audience != "" {
		claims.Audience = jwtlib.ClaimStrings{opts.Audience}
	}
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	return token.SignedString([]byte(strings.TrimSpace(secret)))
}
