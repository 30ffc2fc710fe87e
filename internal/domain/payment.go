package domain

// PaymentDetails is validated structurally at checkout; the card number is
// never persisted anywhere in this module.
type PaymentDetails struct {
	CardNumber     string
	Expiry         string // MM/YY
	CVV            string
	CardholderName string
}
