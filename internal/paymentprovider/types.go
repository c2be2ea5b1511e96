package paymentprovider

// Запрос на создание заказа Razorpay
type CreateOrderRequest struct {
	Amount   int64             `json:"amount"` // сумма в пайсах
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt,omitempty"`
	Notes    map[string]string `json:"notes,omitempty"`
}

// Ответ Razorpay при создании заказа
type CreateOrderResponse struct {
	ID        string `json:"id"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Receipt   string `json:"receipt"`
	Status    string `json:"status"`
	CreatedAt int64  `json:"created_at"`
}
