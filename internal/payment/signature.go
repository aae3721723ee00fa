package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Verifier checks payment completion signatures.  The gateway signs
// "orderID|paymentID" with HMAC-SHA256 keyed by the account secret and
// sends the hex digest to the client.
type Verifier struct {
	secret []byte
}

// NewVerifier returns a Verifier keyed with secret.
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Sign returns the hex signature the gateway would produce for the pair.
func (v *Verifier) Sign(orderID, paymentID string) string {
	return hex.EncodeToString(v.mac(orderID, paymentID))
}

// Verify reports whether signature matches orderID and paymentID.  An
// empty secret, undecodable hex or a digest of the wrong length all
// verify as false; the comparison itself is constant time.
func (v *Verifier) Verify(orderID, paymentID, signature string) bool {
	if len(v.secret) == 0 || orderID == "" || paymentID == "" {
		return false
	}
	got, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	return hmac.Equal(got, v.mac(orderID, paymentID))
}

func (v *Verifier) mac(orderID, paymentID string) []byte {
	m := hmac.New(sha256.New, v.secret)
	m.Write([]byte(orderID + "|" + paymentID))
	return m.Sum(nil)
}
