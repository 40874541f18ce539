// Package signer produces deterministic signatures over arbitrary
// JSON-serializable payloads using a held secp256k1 private key.
//
// Payloads are normalized to a canonical byte representation (JSON with
// lexicographically ordered object keys), hashed with Keccak-256, and
// signed with RFC 6979 deterministic ECDSA. Signing is pure with respect
// to any session state: the same (payload, key) pair always yields the
// same signature.
package signer

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	secpecdsa "github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"golang.org/x/crypto/sha3"
)

// ErrNoKey is returned when a signing operation is attempted without a
// configured private key.
var ErrNoKey = errors.New("signer: no private key configured")

// SignatureSize is the length of a serialized compact signature.
const SignatureSize = 65

// Key holds a secp256k1 private key and the public address derived from it.
type Key struct {
	priv    *secp256k1.PrivateKey
	address string
}

// Generate creates a new random key. Used for ephemeral per-session keys.
func Generate() (*Key, error) {
	priv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	return fromPriv(priv), nil
}

// FromHex loads a key from a hex-encoded 32-byte private scalar.
// A leading "0x" prefix is accepted.
func FromHex(raw string) (*Key, error) {
	trimmed := strings.TrimSpace(raw)
	trimmed = strings.TrimPrefix(trimmed, "0x")
	trimmed = strings.TrimPrefix(trimmed, "0X")
	if trimmed == "" {
		return nil, ErrNoKey
	}

	decoded, err := hex.DecodeString(trimmed)
	if err != nil {
		return nil, fmt.Errorf("private key must be hex: %w", err)
	}
	if len(decoded) != 32 {
		return nil, fmt.Errorf("private key must be 32 bytes, got %d", len(decoded))
	}

	priv := secp256k1.PrivKeyFromBytes(decoded)
	if priv.Key.IsZero() {
		return nil, errors.New("private key is zero")
	}
	return fromPriv(priv), nil
}

func fromPriv(priv *secp256k1.PrivateKey) *Key {
	return &Key{
		priv:    priv,
		address: AddressFromPubKey(priv.PubKey()),
	}
}

// Address returns the 20-byte public address as a 0x-prefixed hex string.
func (k *Key) Address() string {
	if k == nil {
		return ""
	}
	return k.address
}

// Sign normalizes payload to canonical bytes, hashes it, and returns a
// 65-byte compact signature. The payload is never mutated.
func (k *Key) Sign(payload any) ([]byte, error) {
	if k == nil || k.priv == nil {
		return nil, ErrNoKey
	}
	canonical, err := Canonical(payload)
	if err != nil {
		return nil, err
	}
	digest := Keccak256(canonical)
	return secpecdsa.SignCompact(k.priv, digest, false), nil
}

// SignDigest signs a precomputed 32-byte digest.
func (k *Key) SignDigest(digest []byte) ([]byte, error) {
	if k == nil || k.priv == nil {
		return nil, ErrNoKey
	}
	if len(digest) != 32 {
		return nil, fmt.Errorf("digest must be 32 bytes, got %d", len(digest))
	}
	return secpecdsa.SignCompact(k.priv, digest, false), nil
}

// RecoverAddress recovers the signer address of a compact signature over
// the canonical form of payload. Receivers use it to verify that an
// envelope was signed by the claimed holder.
func RecoverAddress(payload any, sig []byte) (string, error) {
	if len(sig) != SignatureSize {
		return "", fmt.Errorf("signature must be %d bytes, got %d", SignatureSize, len(sig))
	}
	canonical, err := Canonical(payload)
	if err != nil {
		return "", err
	}
	digest := Keccak256(canonical)
	pub, _, err := secpecdsa.RecoverCompact(sig, digest)
	if err != nil {
		return "", fmt.Errorf("recover signer: %w", err)
	}
	return AddressFromPubKey(pub), nil
}

// Canonical returns the canonical byte representation of a
// JSON-serializable payload. Object keys are emitted in sorted order
// regardless of the input shape, so structurally equal payloads share
// one byte form.
func Canonical(payload any) ([]byte, error) {
	first, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("canonicalize payload: %w", err)
	}

	// Round-trip through an untyped value: encoding/json sorts map keys
	// on marshal, which normalizes struct field order and whitespace.
	var loose any
	if err := json.Unmarshal(first, &loose); err != nil {
		return nil, fmt.Errorf("canonicalize payload: %w", err)
	}
	canonical, err := json.Marshal(loose)
	if err != nil {
		return nil, fmt.Errorf("canonicalize payload: %w", err)
	}
	return canonical, nil
}

// Keccak256 hashes data with legacy Keccak-256.
func Keccak256(data []byte) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	return h.Sum(nil)
}

// AddressFromPubKey derives the 0x-prefixed address for a public key:
// the last 20 bytes of the Keccak-256 hash of the uncompressed point.
func AddressFromPubKey(pub *secp256k1.PublicKey) string {
	uncompressed := pub.SerializeUncompressed()
	digest := Keccak256(uncompressed[1:])
	return "0x" + hex.EncodeToString(digest[12:])
}
