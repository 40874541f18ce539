package signer

import (
	"bytes"
	"strings"
	"testing"
)

const testKeyHex = "2e0834786285daccd064ca17f1654f67b4aef298acbb82cef9ec422fb4975622"

func TestFromHex(t *testing.T) {
	key, err := FromHex(testKeyHex)
	if err != nil {
		t.Fatalf("FromHex() error: %v", err)
	}
	if key.Address() == "" {
		t.Fatal("Address() is empty")
	}
	if !strings.HasPrefix(key.Address(), "0x") {
		t.Errorf("Address() = %q, want 0x prefix", key.Address())
	}
	if len(key.Address()) != 42 {
		t.Errorf("Address() length = %d, want 42", len(key.Address()))
	}
}

func TestFromHex_AcceptsPrefix(t *testing.T) {
	plain, err := FromHex(testKeyHex)
	if err != nil {
		t.Fatalf("FromHex() error: %v", err)
	}
	prefixed, err := FromHex("0x" + testKeyHex)
	if err != nil {
		t.Fatalf("FromHex(0x...) error: %v", err)
	}
	if plain.Address() != prefixed.Address() {
		t.Errorf("address mismatch: %s vs %s", plain.Address(), prefixed.Address())
	}
}

func TestFromHex_Invalid(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"not hex", "zzzz"},
		{"short", "abcd"},
		{"zero", strings.Repeat("00", 32)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := FromHex(tc.raw); err == nil {
				t.Errorf("FromHex(%q) expected error", tc.raw)
			}
		})
	}
}

func TestSign_Deterministic(t *testing.T) {
	key, err := FromHex(testKeyHex)
	if err != nil {
		t.Fatalf("FromHex() error: %v", err)
	}

	payload := map[string]any{"method": "get_channels", "id": 7}

	first, err := key.Sign(payload)
	if err != nil {
		t.Fatalf("Sign() error: %v", err)
	}
	second, err := key.Sign(payload)
	if err != nil {
		t.Fatalf("Sign() error: %v", err)
	}

	if len(first) != SignatureSize {
		t.Errorf("signature length = %d, want %d", len(first), SignatureSize)
	}
	if !bytes.Equal(first, second) {
		t.Error("Sign() is not deterministic for identical payloads")
	}
}

func TestSign_NoKey(t *testing.T) {
	var key *Key
	if _, err := key.Sign("challenge"); err != ErrNoKey {
		t.Errorf("Sign() error = %v, want ErrNoKey", err)
	}
}

func TestRecoverAddress_RoundTrip(t *testing.T) {
	key, err := FromHex(testKeyHex)
	if err != nil {
		t.Fatalf("FromHex() error: %v", err)
	}

	payload := map[string]any{"challenge": "f2b1a0"}
	sig, err := key.Sign(payload)
	if err != nil {
		t.Fatalf("Sign() error: %v", err)
	}

	recovered, err := RecoverAddress(payload, sig)
	if err != nil {
		t.Fatalf("RecoverAddress() error: %v", err)
	}
	if recovered != key.Address() {
		t.Errorf("recovered address = %s, want %s", recovered, key.Address())
	}
}

func TestRecoverAddress_WrongPayload(t *testing.T) {
	key, err := FromHex(testKeyHex)
	if err != nil {
		t.Fatalf("FromHex() error: %v", err)
	}

	sig, err := key.Sign(map[string]any{"challenge": "aaaa"})
	if err != nil {
		t.Fatalf("Sign() error: %v", err)
	}

	recovered, err := RecoverAddress(map[string]any{"challenge": "bbbb"}, sig)
	if err == nil && recovered == key.Address() {
		t.Error("different payload recovered the same address")
	}
}

func TestCanonical_KeyOrderIndependent(t *testing.T) {
	type shaped struct {
		B int    `json:"b"`
		A string `json:"a"`
	}

	fromStruct, err := Canonical(shaped{B: 2, A: "x"})
	if err != nil {
		t.Fatalf("Canonical() error: %v", err)
	}
	fromMap, err := Canonical(map[string]any{"a": "x", "b": 2})
	if err != nil {
		t.Fatalf("Canonical() error: %v", err)
	}

	if !bytes.Equal(fromStruct, fromMap) {
		t.Errorf("canonical forms differ: %s vs %s", fromStruct, fromMap)
	}
}

func TestGenerate_DistinctKeys(t *testing.T) {
	a, err := Generate()
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	b, err := Generate()
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if a.Address() == b.Address() {
		t.Error("two generated keys share an address")
	}
}
