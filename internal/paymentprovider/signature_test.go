package paymentprovider

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func signPayload(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	const secret = "test_key_secret"
	const orderID = "order_MxJ9000000001"
	const paymentID = "pay_MxJ9000000002"

	valid := signPayload(secret, orderID, paymentID)

	tests := []struct {
		name      string
		secret    string
		orderID   string
		paymentID string
		signature string
		expected  bool
	}{
		{
			name:      "корректная подпись",
			secret:    secret,
			orderID:   orderID,
			paymentID: paymentID,
			signature: valid,
			expected:  true,
		},
		{
			name:      "подпись от другого секрета",
			secret:    secret,
			orderID:   orderID,
			paymentID: paymentID,
			signature: signPayload("other_secret", orderID, paymentID),
			expected:  false,
		},
		{
			name:      "подмена order id",
			secret:    secret,
			orderID:   "order_MxJ9000000009",
			paymentID: paymentID,
			signature: valid,
			expected:  false,
		},
		{
			name:      "подмена payment id",
			secret:    secret,
			orderID:   orderID,
			paymentID: "pay_MxJ9000000009",
			signature: valid,
			expected:  false,
		},
		{
			name:      "пустая подпись",
			secret:    secret,
			orderID:   orderID,
			paymentID: paymentID,
			signature: "",
			expected:  false,
		},
		{
			name:      "искажённый символ подписи",
			secret:    secret,
			orderID:   orderID,
			paymentID: paymentID,
			signature: valid[:len(valid)-1] + "x",
			expected:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := VerifySignature(tt.secret, tt.orderID, tt.paymentID, tt.signature)
			assert.Equal(t, tt.expected, got)
		})
	}
}
