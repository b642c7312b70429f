package core

import (
	"strings"
	"testing"
)

// Requirement: verify(p, hash(p)) is true and verify(p1, hash(p2)) is false.
func TestArgon2HashVerifyRoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		password string
		attempt  string
		want     bool
	}{
		{
			name:     "matching password verifies",
			password: "correct horse battery staple",
			attempt:  "correct horse battery staple",
			want:     true,
		},
		{
			name:     "wrong password does not verify",
			password: "correct horse battery staple",
			attempt:  "Tr0ub4dor&3",
			want:     false,
		},
		{
			name:     "empty attempt does not verify",
			password: "correct horse battery staple",
			attempt:  "",
			want:     false,
		},
	}

	hasher := NewArgon2()
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			encoded, err := hasher.Hash(test.password)
			if err != nil {
				t.Fatalf("Hash() error = %v", err)
			}

			got, err := hasher.Verify(test.attempt, encoded)
			if err != nil {
				t.Fatalf("Verify() error = %v", err)
			}
			if got != test.want {
				t.Errorf("Verify() = %v, want %v", got, test.want)
			}
		})
	}
}

// Requirement: hashing the same password twice yields different stored
// blobs (fresh salt each time), yet both verify against the original.
func TestArgon2SaltUniqueness(t *testing.T) {
	hasher := NewArgon2()

	first, err := hasher.Hash("hunter2")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	second, err := hasher.Hash("hunter2")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	if first == second {
		t.Error("two hashes of the same password should differ")
	}

	for _, encoded := range []string{first, second} {
		ok, err := hasher.Verify("hunter2", encoded)
		if err != nil {
			t.Fatalf("Verify() error = %v", err)
		}
		if !ok {
			t.Error("both salted hashes should verify against the original password")
		}
	}
}

// Requirement: a malformed stored hash verifies as false without an error
// escaping to the caller.
func TestArgon2VerifyMalformedHash(t *testing.T) {
	tests := []struct {
		name    string
		encoded string
	}{
		{name: "empty", encoded: ""},
		{name: "not a hash at all", encoded: "plaintext-leftover"},
		{name: "wrong algorithm", encoded: "$bcrypt$v=19$m=65536,t=3,p=2$c2FsdA$aGFzaA"},
		{name: "truncated sections", encoded: "$argon2id$v=19$m=65536"},
		{name: "bad salt encoding", encoded: "$argon2id$v=19$m=65536,t=3,p=2$!!!$aGFzaA"},
	}

	hasher := NewArgon2()
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			ok, err := hasher.Verify("whatever", test.encoded)
			if err != nil {
				t.Fatalf("Verify() error = %v, want nil", err)
			}
			if ok {
				t.Error("malformed hash must not verify")
			}
		})
	}
}

// Requirement: the encoded blob is self-contained salt+parameters+digest.
func TestArgon2EncodingShape(t *testing.T) {
	hasher := NewArgon2()
	encoded, err := hasher.Hash("hunter2")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	if !strings.HasPrefix(encoded, "$argon2id$") {
		t.Errorf("encoded hash should start with $argon2id$, got %q prefix", encoded[:10])
	}
	if parts := strings.Split(encoded, "$"); len(parts) != 6 {
		t.Errorf("encoded hash should have 6 sections, got %d", len(parts))
	}
}
