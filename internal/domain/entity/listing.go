package entity

import (
	"strings"

	"github.com/shopspring/decimal"
)

func init() {
	// The backend exchanges prices as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

type Category string

const (
	CategoryElectronics Category = "Electronics"
	CategoryBooks       Category = "Books"
	CategoryClothes     Category = "Clothes"
	CategorySports      Category = "Sports"
	CategoryHomeGarden  Category = "Home & Garden"
	CategoryCars        Category = "Cars"
	CategoryOther       Category = "Other"
)

var Categories = []Category{
	CategoryElectronics,
	CategoryBooks,
	CategoryClothes,
	CategorySports,
	CategoryHomeGarden,
	CategoryCars,
	CategoryOther,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

type PaymentMethod string

const (
	PaymentCashOnDelivery PaymentMethod = "cash_on_delivery"
	PaymentBankTransfer   PaymentMethod = "bank_transfer"
	PaymentCard           PaymentMethod = "card"
	PaymentRevolut        PaymentMethod = "revolut"
)

func (p PaymentMethod) Valid() bool {
	switch p {
	case PaymentCashOnDelivery, PaymentBankTransfer, PaymentCard, PaymentRevolut:
		return true
	}
	return false
}

// Listing is a classified ad as exchanged with the backend. Optional fields
// are pointers so a payload that omits them can be told apart from one that
// clears them.
type Listing struct {
	ID            int64           `json:"id"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	ImageURL      *string         `json:"imageUrl"`
	OwnerEmail    string          `json:"ownerEmail,omitempty"`
	Category      Category        `json:"category,omitempty"`
	ContactEmail  *string         `json:"contactEmail"`
	ContactPhone  *string         `json:"contactPhone"`
	IsVip         *bool           `json:"isVip"`
	PaymentMethod *PaymentMethod  `json:"paymentMethod"`
}

func (l *Listing) VIP() bool {
	return l != nil && l.IsVip != nil && *l.IsVip
}

func (l *Listing) HasImage() bool {
	return l != nil && l.ImageURL != nil && strings.TrimSpace(*l.ImageURL) != ""
}

func (l *Listing) OwnedBy(email string) bool {
	return l != nil && email != "" && strings.EqualFold(l.OwnerEmail, email)
}

// Clone returns a deep copy so callers never share pointer fields with the store.
func (l *Listing) Clone() *Listing {
	if l == nil {
		return nil
	}
	c := *l
	c.ImageURL = cloneString(l.ImageURL)
	c.ContactEmail = cloneString(l.ContactEmail)
	c.ContactPhone = cloneString(l.ContactPhone)
	if l.IsVip != nil {
		v := *l.IsVip
		c.IsVip = &v
	}
	if l.PaymentMethod != nil {
		p := *l.PaymentMethod
		c.PaymentMethod = &p
	}
	return &c
}

// ResolveImageURL turns a relative upload path into an absolute URL on baseURL.
// Absolute URLs and data URIs are returned unchanged.
func ResolveImageURL(baseURL, ref string) string {
	ref = strings.TrimSpace(ref)
	switch {
	case ref == "":
		return ""
	case strings.HasPrefix(ref, "data:"),
		strings.HasPrefix(ref, "http://"),
		strings.HasPrefix(ref, "https://"):
		return ref
	case strings.HasPrefix(ref, "/"):
		return strings.TrimRight(baseURL, "/") + ref
	default:
		return strings.TrimRight(baseURL, "/") + "/" + ref
	}
}

func StringPtr(s string) *string {
	return &s
}

func BoolPtr(b bool) *bool {
	return &b
}

// OptionalString returns nil for blank input.
func OptionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
