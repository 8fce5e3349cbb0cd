package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/G77-BOT/aura-flow/internal/cart"
	"github.com/G77-BOT/aura-flow/internal/client"
	"github.com/G77-BOT/aura-flow/internal/config"
	"github.com/G77-BOT/aura-flow/pkg/logger"
)

const usage = `usage: storefront-cli <command> [arguments]

commands:
  products [-category NAME]   list the catalog
  add <product-id>            add a product to the cart
  remove <product-id>         remove a product from the cart
  cart                        show the cart with totals
  checkout                    start checkout for the cart
  session <session-id>        show a checkout session; clears the cart once paid
`

func main() {
	cfg, err := config.LoadClient()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log := logger.NewWithWriter(os.Stderr, logger.Config{Component: "storefront-cli", Level: cfg.LogLevel})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	storage, closeStorage, err := newStorage(ctx, cfg)
	if err != nil {
		log.Error("cart storage unavailable", "error", err)
		os.Exit(1)
	}
	defer closeStorage()

	a := &app{
		api:     client.New(cfg.APIURL, 30*time.Second),
		storage: storage,
		cartKey: cfg.CartKey,
		out:     os.Stdout,
		logger:  log,
	}
	if err := a.run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// newStorage keeps the cart in Redis when configured, else on local disk.
func newStorage(ctx context.Context, cfg config.ClientConfig) (cart.Storage, func(), error) {
	if cfg.RedisAddr == "" {
		return cart.NewFileStorage(cfg.CartDir), func() {}, nil
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, nil, fmt.Errorf("redis ping %s: %w", cfg.RedisAddr, err)
	}
	return cart.NewRedisStorage(rdb), func() { rdb.Close() }, nil
}

type app struct {
	api     *client.Client
	storage cart.Storage
	cartKey string
	out     io.Writer
	logger  *slog.Logger
}
