package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/G77-BOT/aura-flow/internal/cart"
	"github.com/G77-BOT/aura-flow/internal/catalog"
	"github.com/G77-BOT/aura-flow/internal/checkout"
	"github.com/G77-BOT/aura-flow/internal/domain"
	"github.com/G77-BOT/aura-flow/internal/money"
)

var errUsage = errors.New("invalid arguments")

func (a *app) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(a.out, usage)
		return errUsage
	}

	switch cmd, rest := args[0], args[1:]; cmd {
	case "products":
		return a.products(ctx, rest)
	case "add":
		return a.add(ctx, rest)
	case "remove":
		return a.remove(ctx, rest)
	case "cart":
		return a.showCart(ctx)
	case "checkout":
		return a.checkout(ctx)
	case "session":
		return a.session(ctx, rest)
	case "help", "-h", "--help":
		fmt.Fprint(a.out, usage)
		return nil
	default:
		fmt.Fprint(a.out, usage)
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

func (a *app) products(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("products", flag.ContinueOnError)
	fs.SetOutput(a.out)
	category := fs.String("category", "", "only list this category")
	if err := fs.Parse(args); err != nil {
		return err
	}

	products, err := a.api.Products(ctx, *category)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPRICE\tAVAILABILITY")
	for _, p := range products {
		availability := "in stock"
		if !p.InStock {
			availability = "view on marketplace: " + p.MarketplaceURL
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", p.ID, p.Name, p.Category, money.Format(p.UnitPriceMinorUnits), availability)
	}
	return tw.Flush()
}

func (a *app) add(ctx context.Context, args []string) error {
	id, err := productArg(args)
	if err != nil {
		return err
	}
	store, err := a.openCart(ctx)
	if err != nil {
		return err
	}

	if err := store.Add(ctx, id); err != nil {
		switch {
		case errors.Is(err, cart.ErrAlreadyInCart), errors.Is(err, cart.ErrOutOfStock), errors.Is(err, cart.ErrUnknownProduct):
			fmt.Fprintln(a.out, capitalize(err.Error()))
			return nil
		default:
			return err
		}
	}
	fmt.Fprintf(a.out, "Added to cart. %d item(s), %s\n", store.Len(), money.Format(store.Total()))
	return nil
}

func (a *app) remove(ctx context.Context, args []string) error {
	id, err := productArg(args)
	if err != nil {
		return err
	}
	store, err := a.openCart(ctx)
	if err != nil {
		return err
	}

	store.Remove(ctx, id)
	fmt.Fprintf(a.out, "%d item(s) left, %s\n", store.Len(), money.Format(store.Total()))
	return nil
}

func (a *app) showCart(ctx context.Context) error {
	store, err := a.openCart(ctx)
	if err != nil {
		return err
	}
	if store.Len() == 0 {
		fmt.Fprintln(a.out, "Your cart is empty.")
		return nil
	}

	taxPercent := decimal.Zero
	if cfg, err := a.api.Config(ctx); err != nil {
		a.logger.WarnContext(ctx, "could not load display tax", "error", err)
	} else {
		taxPercent = cfg.TaxPercent
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	for _, item := range store.Items() {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", item.ID, item.Name, money.Format(money.ToMinorUnits(item.Price)))
	}
	totals := store.Totals(taxPercent)
	fmt.Fprintf(tw, "\tSubtotal\t%s\n", money.Format(totals.Subtotal))
	fmt.Fprintf(tw, "\tTax (%s%%)\t%s\n", taxPercent.String(), money.Format(totals.Tax))
	fmt.Fprintf(tw, "\tTotal\t%s\n", money.Format(totals.Total))
	return tw.Flush()
}

// checkout prefers a prebuilt payment link for a single-item cart and falls
// back to creating a session.
func (a *app) checkout(ctx context.Context) error {
	store, err := a.openCart(ctx)
	if err != nil {
		return err
	}
	entries := store.Entries()
	if len(entries) == 0 {
		fmt.Fprintln(a.out, "Your cart is empty.")
		return nil
	}

	links, err := a.api.PaymentLinks(ctx)
	if err != nil {
		a.logger.WarnContext(ctx, "payment links unavailable", "error", err)
	}
	if url, ok := checkout.PaymentLinks(links).DirectLink(entries); ok {
		fmt.Fprintf(a.out, "Complete your purchase at:\n%s\n", url)
		return nil
	}

	session, err := a.api.CreateSession(ctx, entries)
	if err != nil {
		return fmt.Errorf("could not start checkout: %w", err)
	}
	fmt.Fprintf(a.out, "Checkout session %s\nComplete your purchase at:\n%s\n", session.ID, session.URL)
	return nil
}

func (a *app) session(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: session takes one session id", errUsage)
	}
	s, err := a.api.RetrieveSession(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Session %s: %s, payment %s\n", s.ID, s.Status, s.PaymentStatus)
	for _, li := range s.LineItems {
		fmt.Fprintf(a.out, "  %d x %s  %s\n", li.Quantity, li.ProductName, money.Format(li.Amount()))
	}
	fmt.Fprintf(a.out, "Total: %s\n", money.Format(s.AmountTotal))

	if s.Status == domain.SessionStatusComplete {
		store, err := a.openCart(ctx)
		if err != nil {
			return err
		}
		store.Clear(ctx)
		fmt.Fprintln(a.out, "Thank you for your order. Your cart has been cleared.")
	}
	return nil
}

// openCart builds the cart store over the live catalog so that cart contents
// and prices follow the server.
func (a *app) openCart(ctx context.Context) (*cart.Store, error) {
	products, err := a.api.Products(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	cat, err := catalog.NewMemory(products)
	if err != nil {
		return nil, err
	}

	store := cart.NewStore(cat, a.storage, cart.WithKey(a.cartKey), cart.WithLogger(a.logger))
	if err := store.Load(ctx); errors.Is(err, cart.ErrCorruptCart) {
		fmt.Fprintln(a.out, capitalize(cart.ErrCorruptCart.Error()))
	} else if err != nil {
		return nil, err
	}
	return store, nil
}

func productArg(args []string) (int64, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("%w: expected one product id", errUsage)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q is not a product id", errUsage, args[0])
	}
	return id, nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	if c := s[0]; c >= 'a' && c <= 'z' {
		return string(c-'a'+'A') + s[1:]
	}
	return s
}
