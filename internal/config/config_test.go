//go:build !integration

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const minimalYAML = `
database:
  url: postgres://u:p@localhost:5432/billing
payme:
  merchant_id: m-123
  merchant_key: ${TEST_PAYME_KEY}
  checkout_url: https://checkout.paycom.uz
  callback_base_url: https://api.example.uz/
security:
  jwt_secret: secret
`

func TestParse_DefaultsAndEnvExpansion(t *testing.T) {
	t.Setenv("TEST_PAYME_KEY", "k3y")

	cfg, err := Parse([]byte(minimalYAML))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Payme.MerchantKey != "k3y" {
		t.Errorf("merchant key not expanded: %q", cfg.Payme.MerchantKey)
	}
	if cfg.Payme.CallbackPath != "/api/v1/payme" {
		t.Errorf("callback path default: %q", cfg.Payme.CallbackPath)
	}
	if cfg.Payme.Auth.Scheme != AuthSchemeBasic || cfg.Payme.Auth.Signature != SignatureKey {
		t.Errorf("auth defaults: %+v", cfg.Payme.Auth)
	}
	if cfg.Payme.Auth.Login != "m-123" {
		t.Errorf("auth login should default to merchant id, got %q", cfg.Payme.Auth.Login)
	}
	if cfg.Payme.MinAmount != 1000 || cfg.Payme.MaxAmount != 100000000 {
		t.Errorf("amount bounds: %d..%d", cfg.Payme.MinAmount, cfg.Payme.MaxAmount)
	}
	if cfg.Subscription.ActivationTimeout != 10*time.Second {
		t.Errorf("activation timeout: %v", cfg.Subscription.ActivationTimeout)
	}
	if cfg.Log.Level != "info" || cfg.Log.Service == "" {
		t.Errorf("log defaults: %+v", cfg.Log)
	}
	if got := cfg.Payme.DefaultReturnURL(); got != "https://api.example.uz/payment/return" {
		t.Errorf("DefaultReturnURL = %q", got)
	}
	if cfg.Kafka.Enabled() {
		t.Error("kafka must be disabled without brokers")
	}
}

func TestParse_Durations(t *testing.T) {
	t.Setenv("TEST_PAYME_KEY", "k")
	y := minimalYAML + `
reconciler:
  enabled: true
  interval: 30s
  stale_after: 2m
cleanup:
  retention: 720h
`
	cfg, err := Parse([]byte(y))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Reconciler.Interval != 30*time.Second || cfg.Reconciler.StaleAfter != 2*time.Minute {
		t.Errorf("reconciler: %+v", cfg.Reconciler)
	}
	if cfg.Cleanup.Retention != 720*time.Hour {
		t.Errorf("retention: %v", cfg.Cleanup.Retention)
	}
	if cfg.Reconciler.BatchSize != 100 {
		t.Errorf("batch size default: %d", cfg.Reconciler.BatchSize)
	}
}

func TestParse_ValidationErrors(t *testing.T) {
	cases := map[string]struct {
		yaml string
		want string
	}{
		"missing everything": {
			yaml: "log:\n  level: debug\n",
			want: "payme.merchant_id is required",
		},
		"bad scheme": {
			yaml: strings.Replace(minimalYAML, "payme:\n", "payme:\n  auth:\n    scheme: bearer\n", 1),
			want: "payme.auth.scheme",
		},
		"bad signature": {
			yaml: strings.Replace(minimalYAML, "payme:\n", "payme:\n  auth:\n    signature: rsa\n", 1),
			want: "payme.auth.signature",
		},
		"min above max": {
			yaml: strings.Replace(minimalYAML, "payme:\n", "payme:\n  min_amount: 5000\n  max_amount: 100\n", 1),
			want: "min_amount exceeds",
		},
		"relative callback path": {
			yaml: strings.Replace(minimalYAML, "payme:\n", "payme:\n  callback_path: payme\n", 1),
			want: "callback_path",
		},
	}
	t.Setenv("TEST_PAYME_KEY", "k")
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(tc.yaml))
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestLoad_FileAndDotEnv(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	if err := os.WriteFile(envPath, []byte("TEST_DOTENV_PAYME_KEY=from-dotenv\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("TEST_DOTENV_PAYME_KEY") })
	if err := loadDotEnv(envPath); err != nil {
		t.Fatalf("loadDotEnv: %v", err)
	}
	if err := loadDotEnv(filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("missing dotenv must be ignored: %v", err)
	}

	cfgPath := filepath.Join(dir, "config.yaml")
	y := strings.Replace(minimalYAML, "${TEST_PAYME_KEY}", "${TEST_DOTENV_PAYME_KEY}", 1)
	if err := os.WriteFile(cfgPath, []byte(y), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Payme.MerchantKey != "from-dotenv" {
		t.Errorf("merchant key = %q", cfg.Payme.MerchantKey)
	}

	if _, err := Load(filepath.Join(dir, "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
