package adapter

import "ielts-payme-billing/internal/domain/model"

// CheckoutLinkBuilder renders the provider URL a customer is redirected to in
// order to pay for an order.
type CheckoutLinkBuilder interface {
	Name() string
	CheckoutURL(o *model.Order) (string, error)
}
