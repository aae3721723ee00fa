package service

import "strings"

// SignatureChecker verifies a gateway payment signature.
type SignatureChecker interface {
    Verify(orderID, paymentID, signature string) bool
}

// PaymentService validates payment proofs submitted by clients.
type PaymentService struct {
    verifier SignatureChecker
}

func NewPaymentService(v SignatureChecker) *PaymentService {
    return &PaymentService{verifier: v}
}

// VerifyPayment returns nil when signature is the gateway's signature over
// orderID and paymentID, and an invalid_signature error otherwise.
func (s *PaymentService) VerifyPayment(orderID, paymentID, signature string) error {
    orderID = strings.TrimSpace(orderID)
    paymentID = strings.TrimSpace(paymentID)
    signature = strings.TrimSpace(signature)
    if orderID == "" || paymentID == "" || signature == "" {
        return invalidInput("order_id, payment_id and signature are required")
    }
    if !s.verifier.Verify(orderID, paymentID, signature) {
        return &Error{Kind: KindInvalidSignature}
    }
    return nil
}
