package checkout

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyCart means there is nothing to check out; the cart is untouched.
var ErrEmptyCart = errors.New("cart is empty, nothing to checkout")

// InvalidPaymentError lists which payment fields failed structural
// validation so the UI can mark them inline.
type InvalidPaymentError struct {
	Fields []string
}

func (e *InvalidPaymentError) Error() string {
	return fmt.Sprintf("invalid payment details: %s", strings.Join(e.Fields, ", "))
}
