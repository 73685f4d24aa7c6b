package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultExpiration is applied when JWTConfig.Expiration is unset.
const DefaultExpiration = 15 * time.Minute

// JWTConfig configures token signing and validation. Platform services
// normally run in validation-only mode: tokens are minted by the gateway
// and services carry only the public key.
type JWTConfig struct {
	// PrivateKeyPEM is a PEM-encoded RSA private key. Setting it enables
	// issuer mode; the public key is derived from it.
	PrivateKeyPEM string

	// PublicKeyPEM is a PEM-encoded RSA public key for validation-only mode.
	PublicKeyPEM string

	// Secret is an HMAC-SHA256 symmetric key. Used only when no RSA key
	// is configured, primarily for local development.
	Secret string

	// SigningMethod is informational: RS256 when an RSA key is present,
	// HS256 otherwise.
	SigningMethod string

	Issuer     string
	Expiration time.Duration
}

// JWTService signs and validates platform tokens.
type JWTService struct {
	config     JWTConfig
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	rsaMode    bool
}

// NewJWTService builds a service from whichever key material is present:
// a private key enables signing, a public key alone validates, and a
// bare secret selects HMAC mode.
func NewJWTService(cfg JWTConfig) (*JWTService, error) {
	if cfg.Expiration <= 0 {
		cfg.Expiration = DefaultExpiration
	}
	svc := &JWTService{config: cfg}

	switch {
	case cfg.PrivateKeyPEM != "":
		privKey, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(cfg.PrivateKeyPEM))
		if err != nil {
			return nil, fmt.Errorf("auth: parse RSA private key: %w", err)
		}
		svc.privateKey = privKey
		svc.publicKey = &privKey.PublicKey
		svc.rsaMode = true

	case cfg.PublicKeyPEM != "":
		pubKey, err := jwt.ParseRSAPublicKeyFromPEM([]byte(cfg.PublicKeyPEM))
		if err != nil {
			return nil, fmt.Errorf("auth: parse RSA public key: %w", err)
		}
		svc.publicKey = pubKey
		svc.rsaMode = true

	case cfg.Secret != "":
		// HMAC mode, development only.

	default:
		return nil, fmt.Errorf("auth: configuration requires PrivateKeyPEM, PublicKeyPEM, or Secret")
	}

	return svc, nil
}

// GenerateToken mints a token carrying the user, tenant and role claims.
// It fails in validation-only mode.
func (s *JWTService) GenerateToken(userID, tenantID uuid.UUID, roles []string) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.Expiration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
		UserID:   userID,
		TenantID: tenantID,
		Roles:    roles,
	}

	if s.rsaMode {
		if s.privateKey == nil {
			return "", fmt.Errorf("auth: no private key configured, token generation unavailable")
		}
		signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(s.privateKey)
		if err != nil {
			return "", fmt.Errorf("auth: sign token: %w", err)
		}
		return signed, nil
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses a token, checks its signature against the
// configured key material, and enforces the issuer when one is set.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if s.rsaMode {
			if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
				return nil, fmt.Errorf("unexpected signing method %v, want RS256", token.Header["alg"])
			}
			return s.publicKey, nil
		}
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v, want HS256", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("auth: parse token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("auth: invalid token")
	}

	if s.config.Issuer != "" && claims.Issuer != s.config.Issuer {
		return nil, fmt.Errorf("auth: issuer %q does not match %q", claims.Issuer, s.config.Issuer)
	}

	return claims, nil
}

// LoadKeyFromFile reads PEM-encoded key material from disk.
func LoadKeyFromFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("auth: read key file %q: %w", path, err)
	}
	return data, nil
}

// GenerateKeyPair creates a 2048-bit RSA keypair as PEM bytes, for
// development and tests.
func GenerateKeyPair() (privateKeyPEM, publicKeyPEM []byte, err error) {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, nil, fmt.Errorf("auth: generate RSA key: %w", err)
	}

	privPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(privateKey),
	})

	pubBytes, err := x509.MarshalPKIXPublicKey(&privateKey.PublicKey)
	if err != nil {
		return nil, nil, fmt.Errorf("auth: marshal public key: %w", err)
	}
	pubPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: pubBytes,
	})

	return privPEM, pubPEM, nil
}
