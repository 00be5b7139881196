package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotAuthenticated means no identity was supplied for a per-user operation.
	ErrNotAuthenticated = errors.New("user must be authenticated")

	// ErrCartEmpty rejects checkout of an empty basket.
	ErrCartEmpty = errors.New("cart is empty")

	// ErrCartNotFound is returned by repositories when a user has no cart row yet.
	ErrCartNotFound = errors.New("cart not found")

	// ErrLineNotFound is returned when a cart line id does not belong to the cart.
	ErrLineNotFound = errors.New("cart item not found")

	// ErrProductNotFound is returned when the referenced product does not exist.
	ErrProductNotFound = errors.New("product does not exist")

	// ErrOrderNotFound is returned when an order id does not exist for the user.
	ErrOrderNotFound = errors.New("order not found")
)

// ValidationError lists the checkout fields that were missing or empty.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Fields, ", "))
}
