package order

import "strings"

// Order is the sort direction.
type Order string

// Sort order constants.
const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// IsValid checks if the order is one of the supported values.
func (o Order) IsValid() bool {
	return o == Asc || o == Desc
}

// Parse reads an order case-insensitively ("DESC" -> Desc).
func Parse(s string) (Order, bool) {
	o := Order(strings.ToLower(s))
	return o, o.IsValid()
}
