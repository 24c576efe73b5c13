// File: internal/config/config.go
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev     bool
	Version string
	Commit  string
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
	Service  string `yaml:"service"`
}

type HTTPConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes"`
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	MaxConns int32  `yaml:"max_conns"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

// Payme callback authentication.
const (
	AuthSchemeBasic = "basic"  // Authorization: Basic base64(login:signature)
	AuthSchemeXAuth = "x-auth" // X-Auth: login:signature

	SignatureKey  = "key"  // signature is the merchant key itself
	SignatureHMAC = "hmac" // signature is hex HMAC-SHA256 of the raw body
)

type PaymeAuthConfig struct {
	Scheme    string `yaml:"scheme"`
	Signature string `yaml:"signature"`
	Login     string `yaml:"login"` // defaults to merchant_id
}

type PaymeReceiptConfig struct {
	Code        string `yaml:"code"`
	PackageCode string `yaml:"package_code"`
	VatPercent  int    `yaml:"vat_percent"`
}

type PaymeConfig struct {
	MerchantID      string             `yaml:"merchant_id"`
	MerchantKey     string             `yaml:"merchant_key"`
	CheckoutURL     string             `yaml:"checkout_url"`
	CallbackBaseURL string             `yaml:"callback_base_url"`
	CallbackPath    string             `yaml:"callback_path"`
	ReturnPath      string             `yaml:"return_path"`
	Auth            PaymeAuthConfig    `yaml:"auth"`
	InvalidOrderIDs []string           `yaml:"invalid_order_ids"`
	MinAmount       int64              `yaml:"min_amount"` // tiyin
	MaxAmount       int64              `yaml:"max_amount"` // tiyin
	Receipt         PaymeReceiptConfig `yaml:"receipt"`
}

// DefaultReturnURL is where Payme sends the customer after checkout when the
// order did not carry its own return URL.
func (p PaymeConfig) DefaultReturnURL() string {
	return strings.TrimRight(p.CallbackBaseURL, "/") + p.ReturnPath
}

type SubscriptionConfig struct {
	FreePlanID        string        `yaml:"free_plan_id"`
	ActivationTimeout time.Duration `yaml:"activation_timeout"`
}

type ReconcilerConfig struct {
	Enabled    bool          `yaml:"enabled"`
	Interval   time.Duration `yaml:"interval"`
	StaleAfter time.Duration `yaml:"stale_after"`
	BatchSize  int           `yaml:"batch_size"`
}

type CleanupConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Interval  time.Duration `yaml:"interval"`
	Retention time.Duration `yaml:"retention"`
}

type KafkaConfig struct {
	Brokers   []string `yaml:"brokers"`
	Topic     string   `yaml:"topic"`
	ClientID  string   `yaml:"client_id"`
	Workers   int      `yaml:"workers"`
	QueueSize int      `yaml:"queue_size"`
}

func (k KafkaConfig) Enabled() bool { return len(k.Brokers) > 0 }

type SecurityConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
	JWTIssuer string `yaml:"jwt_issuer"`
}

type RateLimitConfig struct {
	OrdersPerMinute int `yaml:"orders_per_minute"`
}

type Config struct {
	Log          LogConfig          `yaml:"log"`
	HTTP         HTTPConfig         `yaml:"http"`
	Database     DatabaseConfig     `yaml:"database"`
	Redis        RedisConfig        `yaml:"redis"`
	Payme        PaymeConfig        `yaml:"payme"`
	Subscription SubscriptionConfig `yaml:"subscription"`
	Reconciler   ReconcilerConfig   `yaml:"reconciler"`
	Cleanup      CleanupConfig      `yaml:"cleanup"`
	Kafka        KafkaConfig        `yaml:"kafka"`
	Security     SecurityConfig     `yaml:"security"`
	RateLimit    RateLimitConfig    `yaml:"rate_limit"`

	Runtime RuntimeConfig `yaml:"-"`
}

// LoadConfig parses the -config/-env/-dev flags and loads the file they point at.
func LoadConfig() (*Config, error) {
	var configPath, envPath string
	var dev bool
	flag.StringVar(&configPath, "config", "config.yaml", "path to config yaml")
	flag.StringVar(&envPath, "env", ".env", "optional dotenv file")
	flag.BoolVar(&dev, "dev", false, "development mode")
	flag.Parse()

	if err := loadDotEnv(envPath); err != nil {
		return nil, err
	}
	cfg, err := Load(configPath)
	if err != nil {
		return nil, err
	}
	cfg.Runtime.Dev = dev
	return cfg, nil
}

func loadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

// Load reads the YAML file at path, expands ${VAR} references from the
// environment, applies defaults and validates the result.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

func Parse(b []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(b))), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.Log.Service == "" {
		c.Log.Service = "payme-billing"
	}

	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	c.HTTP.ReadTimeout = orDefault(c.HTTP.ReadTimeout, 10*time.Second)
	c.HTTP.WriteTimeout = orDefault(c.HTTP.WriteTimeout, 15*time.Second)
	c.HTTP.RequestTimeout = orDefault(c.HTTP.RequestTimeout, 10*time.Second)
	c.HTTP.ShutdownTimeout = orDefault(c.HTTP.ShutdownTimeout, 15*time.Second)
	if c.HTTP.MaxBodyBytes <= 0 {
		c.HTTP.MaxBodyBytes = 1 << 20
	}

	if c.Database.MaxConns <= 0 {
		c.Database.MaxConns = 10
	}
	c.Redis.TTL = orDefault(c.Redis.TTL, time.Hour)

	if c.Payme.CallbackPath == "" {
		c.Payme.CallbackPath = "/api/v1/payme"
	}
	if c.Payme.ReturnPath == "" {
		c.Payme.ReturnPath = "/payment/return"
	}
	c.Payme.Auth.Scheme = strings.ToLower(strings.TrimSpace(c.Payme.Auth.Scheme))
	if c.Payme.Auth.Scheme == "" {
		c.Payme.Auth.Scheme = AuthSchemeBasic
	}
	c.Payme.Auth.Signature = strings.ToLower(strings.TrimSpace(c.Payme.Auth.Signature))
	if c.Payme.Auth.Signature == "" {
		c.Payme.Auth.Signature = SignatureKey
	}
	if c.Payme.Auth.Login == "" {
		c.Payme.Auth.Login = c.Payme.MerchantID
	}
	if c.Payme.MinAmount <= 0 {
		c.Payme.MinAmount = 1000
	}
	if c.Payme.MaxAmount <= 0 {
		c.Payme.MaxAmount = 100000000
	}

	if c.Subscription.FreePlanID == "" {
		c.Subscription.FreePlanID = "free"
	}
	c.Subscription.ActivationTimeout = orDefault(c.Subscription.ActivationTimeout, 10*time.Second)

	c.Reconciler.Interval = orDefault(c.Reconciler.Interval, time.Minute)
	c.Reconciler.StaleAfter = orDefault(c.Reconciler.StaleAfter, 5*time.Minute)
	if c.Reconciler.BatchSize <= 0 {
		c.Reconciler.BatchSize = 100
	}
	c.Cleanup.Interval = orDefault(c.Cleanup.Interval, 24*time.Hour)
	c.Cleanup.Retention = orDefault(c.Cleanup.Retention, 90*24*time.Hour)

	if c.Kafka.Topic == "" {
		c.Kafka.Topic = "payme.payments"
	}
	if c.Kafka.ClientID == "" {
		c.Kafka.ClientID = "payme-billing"
	}
	if c.Kafka.Workers <= 0 {
		c.Kafka.Workers = 2
	}
	if c.Kafka.QueueSize <= 0 {
		c.Kafka.QueueSize = 256
	}

	if c.Security.JWTIssuer == "" {
		c.Security.JWTIssuer = "ielts-platform"
	}
	if c.RateLimit.OrdersPerMinute <= 0 {
		c.RateLimit.OrdersPerMinute = 10
	}
}

// Validate rejects configurations the service cannot run with. There are no
// fallback URLs: every endpoint must be configured.
func (c *Config) Validate() error {
	var errs []error
	if c.Database.URL == "" {
		errs = append(errs, errors.New("database.url is required"))
	}
	if c.Payme.MerchantID == "" {
		errs = append(errs, errors.New("payme.merchant_id is required"))
	}
	if c.Payme.MerchantKey == "" {
		errs = append(errs, errors.New("payme.merchant_key is required"))
	}
	if c.Payme.CheckoutURL == "" {
		errs = append(errs, errors.New("payme.checkout_url is required"))
	}
	if c.Payme.CallbackBaseURL == "" {
		errs = append(errs, errors.New("payme.callback_base_url is required"))
	}
	if !strings.HasPrefix(c.Payme.CallbackPath, "/") {
		errs = append(errs, fmt.Errorf("payme.callback_path must start with '/': %q", c.Payme.CallbackPath))
	}
	switch c.Payme.Auth.Scheme {
	case AuthSchemeBasic, AuthSchemeXAuth:
	default:
		errs = append(errs, fmt.Errorf("payme.auth.scheme must be %q or %q", AuthSchemeBasic, AuthSchemeXAuth))
	}
	switch c.Payme.Auth.Signature {
	case SignatureKey, SignatureHMAC:
	default:
		errs = append(errs, fmt.Errorf("payme.auth.signature must be %q or %q", SignatureKey, SignatureHMAC))
	}
	if c.Payme.MinAmount > c.Payme.MaxAmount {
		errs = append(errs, errors.New("payme.min_amount exceeds payme.max_amount"))
	}
	if c.Security.JWTSecret == "" {
		errs = append(errs, errors.New("security.jwt_secret is required"))
	}
	if c.Kafka.Enabled() && c.Kafka.Topic == "" {
		errs = append(errs, errors.New("kafka.topic is required when brokers are set"))
	}
	return errors.Join(errs...)
}

func orDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}
