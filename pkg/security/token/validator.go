package token

import (
	"encoding/hex"

	"aidanwoods.dev/go-paseto"
)

// Validator validates tokens and returns the principal they carry.
type Validator interface {
	ValidateToken(token string) (*Principal, error)
}

// tokenValidator validates PASETO v4 public tokens issued by the auth service.
type tokenValidator struct {
	publicKey paseto.V4AsymmetricPublicKey
}

// newTokenValidator expects a hex-encoded 32-byte Ed25519 public key.
func newTokenValidator(config Config) (Validator, error) {
	keyBytes, err := hex.DecodeString(config.PublicKey)
	if err != nil || len(keyBytes) != 32 {
		return nil, ErrInvalidPublicKey
	}

	publicKey, err := paseto.NewV4AsymmetricPublicKeyFromBytes(keyBytes)
	if err != nil {
		return nil, ErrInvalidPublicKey
	}

	return &tokenValidator{publicKey: publicKey}, nil
}

// ValidateToken verifies the signature and expiry and returns the principal.
func (v *tokenValidator) ValidateToken(tokenString string) (*Principal, error) {
	parser := paseto.NewParser()

	token, err := parser.ParseV4Public(v.publicKey, tokenString, nil)
	if err != nil {
		return nil, ErrInvalidToken
	}

	subject, err := token.GetSubject()
	if err != nil || subject == "" {
		return nil, ErrInvalidToken
	}

	role, _ := token.GetString("role")
	email, _ := token.GetString("email")
	name, _ := token.GetString("name")
	tokenType, _ := token.GetString("type")
	iat, _ := token.GetIssuedAt()
	exp, _ := token.GetExpiration()

	return &Principal{
		UserID:    subject,
		Role:      role,
		Email:     email,
		Name:      name,
		Type:      tokenType,
		IssuedAt:  iat,
		ExpiresAt: exp,
	}, nil
}
