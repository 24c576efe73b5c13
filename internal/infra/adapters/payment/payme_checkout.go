package payment

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"ielts-payme-billing/internal/config"
	"ielts-payme-billing/internal/domain/model"
	"ielts-payme-billing/internal/domain/ports/adapter"
)

var _ adapter.CheckoutLinkBuilder = (*PaymeCheckout)(nil)

// PaymeCheckout renders Payme GET checkout links. The parameters are
// "m=<merchant>;ac.orderId=<order>;a=<tiyin>;c=<return url>" encoded as
// standard base64 and appended to the checkout base URL as a path segment.
type PaymeCheckout struct {
	merchantID string
	baseURL    string
	returnURL  string
}

func NewPaymeCheckout(cfg config.PaymeConfig) (*PaymeCheckout, error) {
	if cfg.MerchantID == "" {
		return nil, errors.New("merchant id empty")
	}
	if _, err := url.ParseRequestURI(cfg.CheckoutURL); err != nil {
		return nil, fmt.Errorf("invalid checkout url: %w", err)
	}
	return &PaymeCheckout{
		merchantID: cfg.MerchantID,
		baseURL:    strings.TrimRight(cfg.CheckoutURL, "/"),
		returnURL:  cfg.DefaultReturnURL(),
	}, nil
}

func (p *PaymeCheckout) Name() string { return "payme" }

func (p *PaymeCheckout) CheckoutURL(o *model.Order) (string, error) {
	if o == nil || o.ID == "" {
		return "", errors.New("order id empty")
	}
	if o.AmountInTiyin <= 0 {
		return "", fmt.Errorf("order %s: non-positive amount", o.ID)
	}
	ret := o.ReturnURL
	if ret == "" {
		ret = p.returnURL
	}
	params := fmt.Sprintf("m=%s;ac.orderId=%s;a=%d;c=%s", p.merchantID, o.ID, o.AmountInTiyin, ret)
	return p.baseURL + "/" + base64.StdEncoding.EncodeToString([]byte(params)), nil
}
