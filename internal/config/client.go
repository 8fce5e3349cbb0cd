package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

const clientEnvPrefix = "STOREFRONT_CLI_"

// ClientConfig configures the terminal storefront.
type ClientConfig struct {
	APIURL    string `koanf:"api_url"`
	CartDir   string `koanf:"cart_dir"`
	CartKey   string `koanf:"cart_key"`
	RedisAddr string `koanf:"redis_addr"`
	LogLevel  string `koanf:"log_level"`
}

func LoadClient() (ClientConfig, error) {
	k := koanf.New(".")

	cartDir := ".aura-flow"
	if dir, err := os.UserConfigDir(); err == nil {
		cartDir = filepath.Join(dir, "aura-flow")
	}
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"api_url":   "http://localhost:8080",
		"cart_dir":  cartDir,
		"cart_key":  "auraFlowCart",
		"log_level": "warn",
	}, "."), nil); err != nil {
		return ClientConfig{}, fmt.Errorf("load defaults: %w", err)
	}

	if err := k.Load(env.Provider(clientEnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, clientEnvPrefix))
	}), nil); err != nil {
		return ClientConfig{}, fmt.Errorf("env overlay: %w", err)
	}

	var cfg ClientConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return ClientConfig{}, fmt.Errorf("unmarshal: %w", err)
	}
	if cfg.APIURL == "" {
		return ClientConfig{}, fmt.Errorf("api_url required")
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	return cfg, nil
}
