package security

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"time"

	"github.com/casetrail/assurance-service/internal/ports"
	"github.com/golang-jwt/jwt/v5"
)

// JWTVerifier validates RS256 bearer tokens issued by the platform's
// authentication service. The assurance layer never signs tokens; it only
// holds the public key.
type JWTVerifier struct {
	publicKey *rsa.PublicKey
}

// NewJWTVerifier builds a verifier from the configured public key PEM.
func NewJWTVerifier(publicKeyPEM string) (*JWTVerifier, error) {
	if publicKeyPEM == "" {
		return nil, errors.New("jwt public key is required")
	}
	pub, err := parseRSAPublic(publicKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}
	return &JWTVerifier{publicKey: pub}, nil
}

// NewEphemeralVerifier generates a throwaway keypair and returns the verifier
// plus a signing function. Exists for local runs and tests where the platform
// issuer is intentionally absent.
func NewEphemeralVerifier() (*JWTVerifier, func(claims ports.ActorClaims) (string, error), error) {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, nil, err
	}
	verifier := &JWTVerifier{publicKey: &privateKey.PublicKey}
	sign := func(claims ports.ActorClaims) (string, error) {
		issued := claims.IssuedAt
		if issued.IsZero() {
			issued = time.Now().UTC()
		}
		expires := claims.ExpiresAt
		if expires.IsZero() {
			expires = issued.Add(time.Hour)
		}
		token := jwt.NewWithClaims(jwt.SigningMethodRS256, actorJWTClaims{
			UserID:   claims.UserID,
			TenantID: claims.TenantID,
			Role:     claims.Role,
			RegisteredClaims: jwt.RegisteredClaims{
				IssuedAt:  jwt.NewNumericDate(issued),
				ExpiresAt: jwt.NewNumericDate(expires),
			},
		})
		return token.SignedString(privateKey)
	}
	return verifier, sign, nil
}

type actorJWTClaims struct {
	UserID   string `json:"user_id"`
	TenantID string `json:"tenant_id"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

func (v *JWTVerifier) ParseAndValidate(raw string) (ports.ActorClaims, error) {
	parsed, err := jwt.ParseWithClaims(raw, &actorJWTClaims{}, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() != jwt.SigningMethodRS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %s", token.Method.Alg())
		}
		return v.publicKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}), jwt.WithLeeway(30*time.Second))
	if err != nil {
		return ports.ActorClaims{}, err
	}
	claims, ok := parsed.Claims.(*actorJWTClaims)
	if !ok || !parsed.Valid {
		return ports.ActorClaims{}, errors.New("invalid token claims")
	}
	if claims.UserID == "" || claims.TenantID == "" {
		return ports.ActorClaims{}, errors.New("token missing user_id or tenant_id")
	}

	out := ports.ActorClaims{
		UserID:   claims.UserID,
		TenantID: claims.TenantID,
		Role:     claims.Role,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time.UTC()
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time.UTC()
	}
	return out, nil
}

func parseRSAPublic(raw string) (*rsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(raw))
	if block == nil {
		return nil, errors.New("invalid public PEM")
	}
	if key, err := x509.ParsePKCS1PublicKey(block.Bytes); err == nil {
		return key, nil
	}
	keyAny, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, err
	}
	key, ok := keyAny.(*rsa.PublicKey)
	if !ok {
		return nil, errors.New("public key is not RSA")
	}
	return key, nil
}
