package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// KeyPair is the RSA key pair of one token role. A verifier-only service
// may hold just the public half.
type KeyPair struct {
	Private *rsa.PrivateKey
	Public  *rsa.PublicKey
}

var ErrNoKeyMaterial = errors.New("no key material")

// ParseKeyPair decodes base64-encoded (or raw) PEM keys. When only the
// private key is given the public key is derived from it.
func ParseKeyPair(privateKey, publicKey string) (KeyPair, error) {
	var kp KeyPair

	if privateKey != "" {
		block, err := decodeKey(privateKey)
		if err != nil {
			return kp, fmt.Errorf("decode private key: %w", err)
		}
		kp.Private, err = jwt.ParseRSAPrivateKeyFromPEM(block)
		if err != nil {
			return kp, fmt.Errorf("parse private key: %w", err)
		}
		kp.Public = &kp.Private.PublicKey
	}

	if publicKey != "" {
		block, err := decodeKey(publicKey)
		if err != nil {
			return kp, fmt.Errorf("decode public key: %w", err)
		}
		kp.Public, err = jwt.ParseRSAPublicKeyFromPEM(block)
		if err != nil {
			return kp, fmt.Errorf("parse public key: %w", err)
		}
	}

	if kp.Public == nil {
		return kp, ErrNoKeyMaterial
	}
	return kp, nil
}

func decodeKey(v string) ([]byte, error) {
	v = strings.TrimSpace(v)
	if strings.HasPrefix(v, "-----BEGIN") {
		return []byte(v), nil
	}
	return base64.StdEncoding.DecodeString(v)
}

// GenerateKeyPair creates a fresh RSA key pair.
func GenerateKeyPair(bits int) (KeyPair, error) {
	priv, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return KeyPair{}, fmt.Errorf("generate rsa key: %w", err)
	}
	return KeyPair{Private: priv, Public: &priv.PublicKey}, nil
}

// EncodeKeyPair returns the base64-encoded PEM forms accepted by ParseKeyPair.
func EncodeKeyPair(kp KeyPair) (privateKey, publicKey string, err error) {
	if kp.Private == nil {
		return "", "", ErrNoKeyMaterial
	}

	privPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(kp.Private),
	})

	pubDER, err := x509.MarshalPKIXPublicKey(&kp.Private.PublicKey)
	if err != nil {
		return "", "", fmt.Errorf("marshal public key: %w", err)
	}
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER})

	return base64.StdEncoding.EncodeToString(privPEM), base64.StdEncoding.EncodeToString(pubPEM), nil
}
