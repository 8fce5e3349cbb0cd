package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/shopspring/decimal"
)

const (
	envPrefix  = "STOREFRONT_"
	production = "production"
)

type Config struct {
	App struct {
		Name        string `koanf:"name"`
		HTTPAddr    string `koanf:"http_addr"`
		Environment string `koanf:"environment"`
		LogLevel    string `koanf:"log_level"`
		LogFile     string `koanf:"log_file"`
	} `koanf:"app"`

	HTTP struct {
		ReadTimeout     time.Duration `koanf:"read_timeout"`
		WriteTimeout    time.Duration `koanf:"write_timeout"`
		IdleTimeout     time.Duration `koanf:"idle_timeout"`
		HandlerTimeout  time.Duration `koanf:"handler_timeout"`
		ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
		MaxBodyBytes    int64         `koanf:"max_body_bytes"`
	} `koanf:"http"`

	Stripe struct {
		SecretKey      string        `koanf:"secret_key"`
		PublishableKey string        `koanf:"publishable_key"`
		APIURL         string        `koanf:"api_url"`
		Timeout        time.Duration `koanf:"timeout"`
	} `koanf:"stripe"`

	Checkout struct {
		SuccessPath  string `koanf:"success_path"`
		CancelPath   string `koanf:"cancel_path"`
		AllowByValue bool   `koanf:"allow_by_value"`
		TaxPercent   string `koanf:"tax_percent"`
	} `koanf:"checkout"`

	// PaymentLinks maps product id to a hosted payment page.
	PaymentLinks map[string]string `koanf:"payment_links"`

	Catalog struct {
		DBPath string `koanf:"db_path"`
		// MigrationsPath overrides the migrations built into the binary.
		MigrationsPath string `koanf:"migrations_path"`
	} `koanf:"catalog"`

	Kafka struct {
		Brokers []string `koanf:"brokers"`
		Topic   string   `koanf:"topic"`
	} `koanf:"kafka"`

	Breaker struct {
		MaxFailures uint32        `koanf:"max_failures"`
		OpenTimeout time.Duration `koanf:"open_timeout"`
	} `koanf:"breaker"`
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"app.name":              "storefront",
		"app.http_addr":         ":8080",
		"app.environment":       "development",
		"app.log_level":         "info",
		"http.read_timeout":     "10s",
		"http.write_timeout":    "30s",
		"http.idle_timeout":     "60s",
		"http.handler_timeout":  "20s",
		"http.shutdown_timeout": "10s",
		"http.max_body_bytes":   64 * 1024,
		"stripe.timeout":        "15s",
		"checkout.success_path": "/success.html",
		"checkout.cancel_path":  "/cancel.html",
		"checkout.tax_percent":  "10",
		"kafka.topic":           "checkout-sessions",
		"breaker.max_failures":  5,
		"breaker.open_timeout":  "30s",
	}
}

// Load layers defaults, {dir}/base.yaml, {dir}/{envName}.yaml and the
// environment. base.yaml is optional when dir is empty.
func Load(dir, envName string) (Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}

	if dir != "" {
		if err := k.Load(file.Provider(filepath.Join(dir, "base.yaml")), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load base: %w", err)
		}
		if envName != "" {
			// the per-environment overlay may be absent, but never unreadable
			overlay := filepath.Join(dir, envName+".yaml")
			if err := k.Load(file.Provider(overlay), yaml.Parser()); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return Config{}, fmt.Errorf("load %s overlay: %w", envName, err)
			}
		}
	}

	// variables the storefront has always been deployed with
	if err := k.Load(env.ProviderWithValue("", ".", legacyEnvKey), nil); err != nil {
		return Config{}, fmt.Errorf("legacy env overlay: %w", err)
	}

	// STOREFRONT_STRIPE__SECRET_KEY, STOREFRONT_PAYMENT_LINKS__5, ...
	if err := k.Load(env.ProviderWithValue(envPrefix, ".", func(key, value string) (string, interface{}) {
		key = strings.ToLower(strings.ReplaceAll(strings.TrimPrefix(key, envPrefix), "__", "."))
		if key == "kafka.brokers" {
			return key, splitList(value)
		}
		return key, value
	}), nil); err != nil {
		return Config{}, fmt.Errorf("env overlay: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func legacyEnvKey(key, value string) (string, interface{}) {
	if value == "" {
		return "", nil
	}
	switch key {
	case "STRIPE_SECRET_KEY":
		return "stripe.secret_key", value
	case "STRIPE_PUBLISHABLE_KEY":
		return "stripe.publishable_key", value
	case "NODE_ENV":
		return "app.environment", value
	}
	return "", nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c Config) Validate() error {
	var errs []error
	if c.App.HTTPAddr == "" {
		errs = append(errs, errors.New("app.http_addr required"))
	}
	if c.Stripe.SecretKey == "" {
		errs = append(errs, errors.New("stripe.secret_key required"))
	}
	if !strings.HasPrefix(c.Checkout.SuccessPath, "/") || !strings.HasPrefix(c.Checkout.CancelPath, "/") {
		errs = append(errs, errors.New("checkout.success_path and checkout.cancel_path must start with /"))
	}
	if _, err := c.TaxPercent(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.PaymentLinkMap(); err != nil {
		errs = append(errs, err)
	}
	if c.HTTP.MaxBodyBytes <= 0 {
		errs = append(errs, errors.New("http.max_body_bytes must be positive"))
	}
	return errors.Join(errs...)
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.App.Environment, production)
}

// TaxPercent is the display-only surcharge shown next to cart totals.
func (c Config) TaxPercent() (decimal.Decimal, error) {
	d, err := decimal.NewFromString(c.Checkout.TaxPercent)
	if err != nil {
		return decimal.Zero, fmt.Errorf("checkout.tax_percent: %w", err)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("checkout.tax_percent must not be negative")
	}
	return d, nil
}

func (c Config) PaymentLinkMap() (map[int64]string, error) {
	out := make(map[int64]string, len(c.PaymentLinks))
	for k, v := range c.PaymentLinks {
		id, err := strconv.ParseInt(k, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("payment_links key %q is not a product id", k)
		}
		if v = strings.TrimSpace(v); v != "" {
			out[id] = v
		}
	}
	return out, nil
}

// EnvName picks the overlay file name from STOREFRONT_ENV.
func EnvName() string {
	if v := os.Getenv(envPrefix + "ENV"); v != "" {
		return v
	}
	return "development"
}
