package webhook

import "testing"

func TestVerifySignature_AcceptsCorrectDigest(t *testing.T) {
	body := []byte(`{"type":"contact_add"}`)
	sig := Sign(body, "s3cret")

	if !VerifySignature(body, sig, "s3cret") {
		t.Fatalf("expected valid signature to verify")
	}
}

func TestVerifySignature_RejectsMutatedDigest(t *testing.T) {
	body := []byte(`{"type":"contact_add"}`)
	sig := Sign(body, "s3cret")

	// Flip one hex character.
	mutated := []byte(sig)
	if mutated[0] == 'a' {
		mutated[0] = 'b'
	} else {
		mutated[0] = 'a'
	}

	if VerifySignature(body, string(mutated), "s3cret") {
		t.Fatalf("expected mutated signature to fail")
	}
}

func TestVerifySignature_RejectsWrongSecret(t *testing.T) {
	body := []byte("payload")
	sig := Sign(body, "other")
	if VerifySignature(body, sig, "s3cret") {
		t.Fatalf("expected signature under wrong secret to fail")
	}
}

func TestVerifySignature_SkipsWhenNoSecret(t *testing.T) {
	if !VerifySignature([]byte("anything"), "garbage", "") {
		t.Fatalf("expected verification to pass when secret is unset")
	}
}

func TestVerifySignature_RejectsMalformedHex(t *testing.T) {
	if VerifySignature([]byte("body"), "not-hex-at-all", "s3cret") {
		t.Fatalf("expected malformed signature to fail")
	}
}
