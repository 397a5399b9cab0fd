package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// VerifySignature checks an HMAC-SHA256 signature over the raw request
// body. ActiveCampaign sends the digest as lowercase hex in the
// X-ActiveCampaign-Signature header.
//
// An empty secret disables verification (the caller logs that as a
// warning at startup). Comparison is constant-time on the decoded MACs
// to avoid leaking secret material through timing.
func VerifySignature(body []byte, signature, secret string) bool {
	if secret == "" {
		return true
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := mac.Sum(nil)

	got, err := hex.DecodeString(strings.ToLower(strings.TrimSpace(signature)))
	if err != nil {
		return false
	}
	return hmac.Equal(expected, got)
}

// Sign computes the lowercase hex HMAC-SHA256 digest a sender would
// put in the signature header. Used by tests and the test endpoint.
func Sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
