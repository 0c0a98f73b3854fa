// Client is a minimal storefront front end: browse the catalog, keep a
// locally persisted cart and wishlist, check out, and list the library.
//
// The cart lives on this side of the wire. By default it persists to
// JSON files under the state directory; with -redis it persists to a
// redis-backed session instead.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Heetpatel219/GameLibrary/internal/cart"
	"github.com/Heetpatel219/GameLibrary/internal/checkout"
	"github.com/Heetpatel219/GameLibrary/pkg/kit"
)

const usage = `usage: client [flags] <command> [args]

commands:
  games                 list the catalog
  show                  show the cart and wishlist
  add <game-id>         add a game to the cart
  remove <game-id>      remove a game from the cart
  qty <game-id> <n>     set a line item's quantity
  wish <game-id>        add a game to the wishlist
  unwish <game-id>      remove a game from the wishlist
  checkout              purchase the cart contents
  library               list owned games
`

func main() {
	var (
		server   = flag.String("server", envOr("GAMELIBRARY_SERVER", "http://localhost:8080"), "storefront base URL")
		userID   = flag.String("user", envOr("GAMELIBRARY_USER", ""), "opaque user id (User-Id header)")
		token    = flag.String("token", envOr("GAMELIBRARY_TOKEN", ""), "bearer token from the identity provider")
		stateDir = flag.String("state-dir", envOr("GAMELIBRARY_STATE_DIR", defaultStateDir()), "local cart/wishlist state directory")
		redisURL = flag.String("redis", envOr("GAMELIBRARY_REDIS", ""), "redis addr for session-backed cart state (optional)")
		session  = flag.String("session", envOr("GAMELIBRARY_SESSION", "default"), "session id for redis-backed cart state")
	)
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	log := kit.NewLogger("client")
	defer func() { _ = log.Sync() }()

	storage, err := newStorage(*redisURL, *session, *stateDir)
	if err != nil {
		fatalf("storage: %v", err)
	}

	store := cart.NewStore(storage, log)
	store.Load()

	client := checkout.NewClient(*server)
	client.UserID = *userID
	client.Token = *token

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := run(ctx, flag.Args(), client, store); err != nil {
		fatalf("%v", err)
	}
}

func run(ctx context.Context, args []string, client *checkout.Client, store *cart.Store) error {
	cmd, rest := args[0], args[1:]

	switch cmd {
	case "games":
		games, err := client.Games(ctx)
		if err != nil {
			return err
		}
		for _, g := range games {
			marker := " "
			if store.IsInCart(g.ID) {
				marker = "*"
			}
			fmt.Printf("%s %-10s %8s  %s\n", marker, g.ID, g.Price.StringFixed(2), g.Name)
		}
		return nil

	case "show":
		for _, it := range store.Items() {
			fmt.Printf("%-10s x%-3d %8s  %s\n", it.ID, it.Quantity, it.Price.StringFixed(2), it.Name)
		}
		fmt.Printf("total: %s (%d adds)\n", store.Total().StringFixed(2), store.Count())
		if wl := store.Wishlist(); len(wl) > 0 {
			fmt.Println("wishlist:")
			for _, g := range wl {
				fmt.Printf("  %-10s %s\n", g.ID, g.Name)
			}
		}
		return nil

	case "add", "wish":
		if len(rest) != 1 {
			return errors.New(usage)
		}
		g, err := findGame(ctx, client, rest[0])
		if err != nil {
			return err
		}
		if cmd == "add" {
			store.AddToCart(g)
		} else {
			store.AddToWishlist(g)
		}
		return nil

	case "remove":
		if len(rest) != 1 {
			return errors.New(usage)
		}
		store.RemoveFromCart(rest[0])
		return nil

	case "unwish":
		if len(rest) != 1 {
			return errors.New(usage)
		}
		store.RemoveFromWishlist(rest[0])
		return nil

	case "qty":
		if len(rest) != 2 {
			return errors.New(usage)
		}
		n, err := strconv.Atoi(rest[1])
		if err != nil {
			return fmt.Errorf("bad quantity %q", rest[1])
		}
		store.UpdateQuantity(rest[0], n)
		return nil

	case "checkout":
		if len(store.Items()) == 0 {
			return errors.New("cart is empty")
		}
		err := checkout.Checkout(ctx, client, store)
		var dup *checkout.DuplicateRejection
		if errors.As(err, &dup) {
			fmt.Println(dup.Detail.Title)
			fmt.Println(dup.Detail.Details)
			return errors.New("nothing was purchased")
		}
		if err != nil {
			return err
		}
		fmt.Println("purchase complete; games added to your library")
		return nil

	case "library":
		games, err := client.Library(ctx)
		if err != nil {
			return err
		}
		for _, g := range games {
			fmt.Printf("%-10s %s\n", g.ID, g.Name)
		}
		return nil

	default:
		return fmt.Errorf("unknown command %q\n%s", cmd, usage)
	}
}

func findGame(ctx context.Context, client *checkout.Client, id string) (cart.Game, error) {
	games, err := client.Games(ctx)
	if err != nil {
		return cart.Game{}, err
	}
	for _, g := range games {
		if g.ID == id {
			return cart.Game{ID: g.ID, Name: g.Name, Price: g.Price, Image: g.Image}, nil
		}
	}
	return cart.Game{}, fmt.Errorf("game %q not in catalog", id)
}

func newStorage(redisURL, session, stateDir string) (cart.Storage, error) {
	if redisURL != "" {
		client := redis.NewClient(&redis.Options{Addr: redisURL})
		return cart.NewRedisStorage(client, session), nil
	}
	return cart.NewFileStorage(stateDir)
}

func defaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".gamelibrary"
	}
	return filepath.Join(home, ".gamelibrary")
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
