package paymentprovider

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// VerifySignature проверяет подпись подтверждения платежа Razorpay.
// Ожидаемая подпись — HMAC-SHA256 от строки "orderID|paymentID" на общем
// секрете, в шестнадцатеричной записи. Сравнение выполняется за
// постоянное время.
func VerifySignature(secret, orderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
