// File: internal/infra/security/payme_guard.go
package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"net/http"
	"net/url"
	"strings"

	"ielts-payme-billing/internal/config"
	"ielts-payme-billing/internal/domain"
)

// PaymeGuard verifies the credentials Payme sends with every callback.
// It holds no state besides its configuration and is safe for concurrent use.
type PaymeGuard struct {
	scheme    string
	signature string
	login     []byte
	key       []byte
}

func NewPaymeGuard(cfg config.PaymeConfig) *PaymeGuard {
	login := cfg.Auth.Login
	if login == "" {
		login = cfg.MerchantID
	}
	return &PaymeGuard{
		scheme:    cfg.Auth.Scheme,
		signature: cfg.Auth.Signature,
		login:     []byte(login),
		key:       []byte(cfg.MerchantKey),
	}
}

// Authenticate returns nil when the request carries valid credentials and
// the same -32504 error for every kind of failure.
func (g *PaymeGuard) Authenticate(h http.Header, rawBody []byte) *domain.RPCError {
	cred, ok := g.credentials(h)
	if !ok {
		return domain.ErrAuthorization()
	}
	login, sig, ok := strings.Cut(cred, ":")
	if !ok {
		return domain.ErrAuthorization()
	}
	if subtle.ConstantTimeCompare([]byte(login), g.login) != 1 {
		return domain.ErrAuthorization()
	}

	want := g.expectedSignature(rawBody)
	matched := 0
	for _, c := range signatureCandidates(sig) {
		matched |= subtle.ConstantTimeCompare([]byte(c), want)
	}
	if matched != 1 {
		return domain.ErrAuthorization()
	}
	return nil
}

func (g *PaymeGuard) credentials(h http.Header) (string, bool) {
	switch g.scheme {
	case config.AuthSchemeXAuth:
		v := strings.TrimSpace(h.Get("X-Auth"))
		return v, v != ""
	default:
		v := strings.TrimSpace(h.Get("Authorization"))
		scheme, payload, ok := strings.Cut(v, " ")
		if !ok || !strings.EqualFold(scheme, "Basic") {
			return "", false
		}
		payload = strings.TrimSpace(payload)
		b, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			if b, err = base64.RawStdEncoding.DecodeString(payload); err != nil {
				return "", false
			}
		}
		return string(b), len(b) > 0
	}
}

func (g *PaymeGuard) expectedSignature(body []byte) []byte {
	if g.signature == config.SignatureHMAC {
		m := hmac.New(sha256.New, g.key)
		m.Write(body)
		return []byte(hex.EncodeToString(m.Sum(nil)))
	}
	return g.key
}

// signatureCandidates lists the forms a presented signature is accepted in:
// as sent, URL-decoded, and both again without one trailing '%'.
func signatureCandidates(sig string) []string {
	out := []string{sig}
	add := func(s string) {
		if s == "" {
			return
		}
		for _, c := range out {
			if c == s {
				return
			}
		}
		out = append(out, s)
	}
	if d, err := url.QueryUnescape(sig); err == nil {
		add(d)
	}
	if trimmed, ok := strings.CutSuffix(sig, "%"); ok {
		add(trimmed)
		if d, err := url.QueryUnescape(trimmed); err == nil {
			add(d)
		}
	}
	return out
}
