package kernel

import (
	"fmt"
	"strings"

	"parcelbot/internal/pkg/errs"
)

// OrderIDMaxLength bounds the opaque order identifier.
const OrderIDMaxLength = 64

// ErrOrderIDIsNotConstructed indicates a zero-value OrderID.
var ErrOrderIDIsNotConstructed = errs.NewValueIsRequiredError("OrderID must be created via NewOrderID")

// OrderID identifies a parcel order. Its content is opaque to this service:
// it is whatever key the shipment registry and the order store agreed on.
type OrderID struct {
	value string
}

// NewOrderID trims surrounding whitespace and rejects blank or oversized ids.
func NewOrderID(raw string) (OrderID, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return OrderID{}, errs.NewValueIsRequiredError("orderId")
	}
	if len(value) > OrderIDMaxLength {
		return OrderID{}, errs.NewValueIsInvalidErrorWithCause(
			"orderId",
			fmt.Errorf("length %d exceeds %d", len(value), OrderIDMaxLength),
		)
	}
	return OrderID{value: value}, nil
}

// MustOrderID is NewOrderID for literals known to be valid.
func MustOrderID(raw string) OrderID {
	id, err := NewOrderID(raw)
	if err != nil {
		panic(err)
	}
	return id
}

func (id OrderID) String() string {
	return id.value
}

func (id OrderID) IsEqual(other OrderID) bool {
	return id.value == other.value
}

func (id OrderID) Validate() error {
	if id.value == "" {
		return ErrOrderIDIsNotConstructed
	}
	return nil
}
