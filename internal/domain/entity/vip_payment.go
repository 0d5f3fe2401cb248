package entity

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// CardDetails is the payment input for a VIP upgrade. It is never persisted
// and the full number never leaves the process.
type CardDetails struct {
	Number string `json:"cardNumber" validate:"required,luhn"`
	Holder string `json:"cardHolder" validate:"required"`
	Expiry string `json:"expiryDate" validate:"required,expiry"`
	CVV    string `json:"cvv" validate:"required,cvv"`
}

// LastFour returns the last four digits of the card number.
func (c CardDetails) LastFour() string {
	digits := NormalizeCardNumber(c.Number)
	if len(digits) <= 4 {
		return digits
	}
	return digits[len(digits)-4:]
}

// VipPayment is the backend's record of a pending or completed VIP charge.
type VipPayment struct {
	PaymentID int64           `json:"paymentId"`
	ItemID    int64           `json:"itemId"`
	Amount    decimal.Decimal `json:"amount"`
	Status    string          `json:"status"`
	Message   string          `json:"message,omitempty"`
}

type VipPrice struct {
	Price    decimal.Decimal `json:"price"`
	Currency string          `json:"currency"`
}

// NormalizeCardNumber strips spaces and dashes.
func NormalizeCardNumber(number string) string {
	return strings.NewReplacer(" ", "", "-", "").Replace(number)
}

// LuhnValid runs the mod-10 check on a 13-19 digit card number.
func LuhnValid(number string) bool {
	digits := NormalizeCardNumber(number)
	if len(digits) < 13 || len(digits) > 19 {
		return false
	}

	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
		if d < 0 || d > 9 {
			return false
		}
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

var expiryPattern = regexp.MustCompile(`^(\d{2})/(\d{2})$`)

// ExpiryValid accepts MM/YY with a month between 01 and 12.
func ExpiryValid(expiry string) bool {
	m := expiryPattern.FindStringSubmatch(strings.TrimSpace(expiry))
	if m == nil {
		return false
	}
	month, err := strconv.Atoi(m[1])
	return err == nil && month >= 1 && month <= 12
}

var cvvPattern = regexp.MustCompile(`^\d{3,4}$`)

func CVVValid(cvv string) bool {
	return cvvPattern.MatchString(strings.TrimSpace(cvv))
}
