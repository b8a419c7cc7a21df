package password

import "testing"

func TestHashAndVerify_Roundtrip(t *testing.T) {
	t.Parallel()

	hash, err := Hash("Secret123!")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if hash == "Secret123!" {
		t.Fatal("hash must not equal the plaintext")
	}
	if !Verify(hash, "Secret123!") {
		t.Fatal("correct password should verify")
	}
	if Verify(hash, "secret123!") {
		t.Fatal("wrong password should not verify")
	}
}

func TestVerify_NoStoredHash(t *testing.T) {
	t.Parallel()

	if Verify("", "anything") {
		t.Fatal("missing stored hash must verify false")
	}
}

func TestHash_DistinctSalts(t *testing.T) {
	t.Parallel()

	a, err := Hash("same-password")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	b, err := Hash("same-password")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if a == b {
		t.Fatal("two hashes of the same password should differ by salt")
	}
}
