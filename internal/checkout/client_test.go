package checkout_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Heetpatel219/GameLibrary/internal/cart"
	"github.com/Heetpatel219/GameLibrary/internal/catalog"
	"github.com/Heetpatel219/GameLibrary/internal/checkout"
	"github.com/Heetpatel219/GameLibrary/internal/identity"
	"github.com/Heetpatel219/GameLibrary/internal/purchase"
	"github.com/Heetpatel219/GameLibrary/internal/storefront"
)

func newStorefrontTS(t *testing.T) *httptest.Server {
	t.Helper()

	catalogStore := catalog.NewMemStore()
	err := catalogStore.ReplaceAll(context.Background(), []catalog.Game{
		{ID: "g1", Name: "Elden Throne", Price: decimal.RequireFromString("59.99"), Image: "https://img.example/g1.jpg"},
		{ID: "g2", Name: "Star Drift", Price: decimal.RequireFromString("19.99"), Image: "https://img.example/g2.jpg"},
		{ID: "g3", Name: "Mire", Price: decimal.RequireFromString("4.99"), Image: "https://img.example/g3.jpg"},
	})
	if err != nil {
		t.Fatalf("seed catalog: %v", err)
	}

	h := storefront.NewHandler(
		storefront.Deps{
			Catalog:  &catalog.Server{Store: catalogStore, Log: zap.NewNop()},
			Purchase: &purchase.Server{Store: purchase.NewMemStore(), Log: zap.NewNop()},
		},
		storefront.HTTPDeps{
			Log:     zap.NewNop(),
			Service: "storefront",
		},
	)

	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return ts
}

func signTestToken(t *testing.T, secret, subject string) string {
	t.Helper()

	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return tok
}

func newUserClient(ts *httptest.Server, userID string) *checkout.Client {
	c := checkout.NewClient(ts.URL)
	c.UserID = userID
	return c
}

func addFromCatalog(t *testing.T, ctx context.Context, c *checkout.Client, store *cart.Store, id string) {
	t.Helper()

	games, err := c.Games(ctx)
	if err != nil {
		t.Fatalf("games: %v", err)
	}
	for _, g := range games {
		if g.ID == id {
			store.AddToCart(cart.Game{ID: g.ID, Name: g.Name, Price: g.Price, Image: g.Image})
			return
		}
	}
	t.Fatalf("game %s not in catalog", id)
}

func TestCheckoutFlow(t *testing.T) {
	ts := newStorefrontTS(t)
	ctx := context.Background()

	c := newUserClient(ts, "u1")
	store := cart.NewStore(cart.NewMemStorage(), zap.NewNop())
	store.Load()

	addFromCatalog(t, ctx, c, store, "g1")
	addFromCatalog(t, ctx, c, store, "g2")

	if err := checkout.Checkout(ctx, c, store); err != nil {
		t.Fatalf("checkout: %v", err)
	}

	// The cart clears only after the explicit success signal.
	if len(store.Items()) != 0 {
		t.Fatalf("cart items=%d want=0 after successful checkout", len(store.Items()))
	}

	games, err := c.Library(ctx)
	if err != nil {
		t.Fatalf("library: %v", err)
	}
	if len(games) != 2 {
		t.Fatalf("library=%d want=2", len(games))
	}
}

func TestCheckout_DuplicateLeavesCartIntact(t *testing.T) {
	ts := newStorefrontTS(t)
	ctx := context.Background()

	c := newUserClient(ts, "u1")

	first := cart.NewStore(cart.NewMemStorage(), zap.NewNop())
	first.Load()
	addFromCatalog(t, ctx, c, first, "g1")
	if err := checkout.Checkout(ctx, c, first); err != nil {
		t.Fatalf("first checkout: %v", err)
	}

	second := cart.NewStore(cart.NewMemStorage(), zap.NewNop())
	second.Load()
	addFromCatalog(t, ctx, c, second, "g1")
	addFromCatalog(t, ctx, c, second, "g3")

	err := checkout.Checkout(ctx, c, second)
	var dup *checkout.DuplicateRejection
	if !errors.As(err, &dup) {
		t.Fatalf("err=%v want DuplicateRejection", err)
	}
	if dup.Detail.Count != 1 || dup.Detail.Games[0].ID != "g1" {
		t.Fatalf("rejection=%+v", dup.Detail)
	}

	// All-or-nothing: the untainted game was not purchased either, and
	// the cart stays as it was so the user can fix it and retry.
	if len(second.Items()) != 2 {
		t.Fatalf("cart items=%d want=2 after rejected checkout", len(second.Items()))
	}
	games, err := c.Library(ctx)
	if err != nil {
		t.Fatalf("library: %v", err)
	}
	if len(games) != 1 || games[0].ID != "g1" {
		t.Fatalf("library=%+v want only g1", games)
	}
}

func TestCheckout_Unauthorized(t *testing.T) {
	ts := newStorefrontTS(t)
	ctx := context.Background()

	c := checkout.NewClient(ts.URL) // no identity
	store := cart.NewStore(cart.NewMemStorage(), zap.NewNop())
	store.Load()
	addFromCatalog(t, ctx, c, store, "g1")

	if err := checkout.Checkout(ctx, c, store); !errors.Is(err, checkout.ErrUnauthorized) {
		t.Fatalf("err=%v want ErrUnauthorized", err)
	}
	if len(store.Items()) != 1 {
		t.Fatal("cart cleared despite failed checkout")
	}

	if _, err := c.Library(ctx); !errors.Is(err, checkout.ErrUnauthorized) {
		t.Fatalf("library err=%v want ErrUnauthorized", err)
	}
}

func TestCheckout_BearerTokenIdentity(t *testing.T) {
	const secret = "test-secret"

	catalogStore := catalog.NewMemStore()
	if err := catalogStore.ReplaceAll(context.Background(), []catalog.Game{
		{ID: "g1", Name: "Elden Throne", Price: decimal.RequireFromString("59.99")},
	}); err != nil {
		t.Fatalf("seed catalog: %v", err)
	}

	h := storefront.NewHandler(
		storefront.Deps{
			Catalog:  &catalog.Server{Store: catalogStore, Log: zap.NewNop()},
			Purchase: &purchase.Server{Store: purchase.NewMemStore(), Log: zap.NewNop()},
			Verifier: identity.NewVerifier(secret),
		},
		storefront.HTTPDeps{Log: zap.NewNop(), Service: "storefront"},
	)
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)

	ctx := context.Background()

	// With a verifier configured the bare header no longer works.
	headerOnly := checkout.NewClient(ts.URL)
	headerOnly.UserID = "u1"
	if _, err := headerOnly.Library(ctx); !errors.Is(err, checkout.ErrUnauthorized) {
		t.Fatalf("header-only err=%v want ErrUnauthorized", err)
	}

	c := checkout.NewClient(ts.URL)
	c.Token = signTestToken(t, secret, "u_42")

	store := cart.NewStore(cart.NewMemStorage(), zap.NewNop())
	store.Load()
	addFromCatalog(t, ctx, c, store, "g1")

	if err := checkout.Checkout(ctx, c, store); err != nil {
		t.Fatalf("checkout: %v", err)
	}
	games, err := c.Library(ctx)
	if err != nil || len(games) != 1 {
		t.Fatalf("library=%v err=%v", games, err)
	}
}
