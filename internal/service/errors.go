package service

import "errors"

var (
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrEmptyCart           = errors.New("cart is empty")
	ErrInvalidCart         = errors.New("cart contains an invalid line")
	ErrProductUnavailable  = errors.New("product unavailable")
	ErrPaymentIntentFailed = errors.New("payment intent failed")
	ErrPersistenceFailed   = errors.New("order persistence failed")
	ErrNotFound            = errors.New("order not found")
	ErrUpdateFailed        = errors.New("order update failed")
)

var errorKinds = []struct {
	err  error
	kind string
}{
	{ErrUpstreamUnavailable, "upstream_unavailable"},
	{ErrEmptyCart, "empty_cart"},
	{ErrInvalidCart, "invalid_cart"},
	{ErrProductUnavailable, "product_unavailable"},
	{ErrPaymentIntentFailed, "payment_intent_failed"},
	{ErrPersistenceFailed, "persistence_failed"},
	{ErrNotFound, "not_found"},
	{ErrUpdateFailed, "update_failed"},
}

// ErrorKind returns a stable label for err, or "unknown".
func ErrorKind(err error) string {
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return "unknown"
}
