package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Credential is a wallet key (a JWK for Arweave) kept as the raw JSON the
// SDK expects.
type Credential struct {
	raw json.RawMessage
}

// ParseCredential accepts a non-empty JSON object.
func ParseCredential(b []byte) (Credential, error) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return Credential{}, ErrEmptyCredential
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return Credential{}, fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}
	if len(fields) == 0 {
		return Credential{}, fmt.Errorf("%w: no keys", ErrInvalidCredential)
	}
	raw := make(json.RawMessage, len(b))
	copy(raw, b)
	return Credential{raw: raw}, nil
}

// Bytes returns the JSON encoding of the credential.
func (c Credential) Bytes() []byte {
	return c.raw
}

func (c Credential) IsZero() bool {
	return len(c.raw) == 0
}

// String never prints key material.
func (c Credential) String() string {
	if c.IsZero() {
		return "Credential(empty)"
	}
	return "Credential(redacted)"
}
