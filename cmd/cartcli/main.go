package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"cartsync/internal/cartclient"
	"cartsync/internal/cartstorage"
	"cartsync/internal/cartstore"
	"cartsync/internal/config"
	"cartsync/internal/session"
)

const usage = `usage: cartcli <command> [flags]

commands:
  show                     print the locally cached cart
  load                     fetch the current cart from the server
  add -product ID [-qty N] [-variant ID]
  update -item ID -qty N
  remove -item ID
  clear
  migrate -user ID         move the session cart to an authenticated user
`

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stderr, "[cartcli] ", log.LstdFlags)

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	command := os.Args[1]
	args := os.Args[2:]

	kv, err := cartstorage.NewFileStore(cfg.CartStatePath)
	if err != nil {
		logger.Fatalf("open state dir: %v", err)
	}

	client := cartclient.New(cfg.CartAPIURL)
	store := cartstore.New(
		client,
		cartstorage.NewAdapter(kv, logger),
		session.NewResolver(kv, logger),
	)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
	defer cancel()

	switch command {
	case "show":
		// Nothing to do: the store primes itself from local state.
	case "load":
		store.LoadCart(ctx)
	case "add":
		fs := flag.NewFlagSet("add", flag.ExitOnError)
		product := fs.String("product", "", "product id")
		qty := fs.Int("qty", 1, "quantity")
		variant := fs.String("variant", "", "variant id")
		fs.Parse(args)
		req := cartstore.AddRequest{ProductID: *product, Quantity: *qty}
		if *variant != "" {
			req.VariantID = variant
		}
		store.AddToCart(ctx, req)
	case "update":
		fs := flag.NewFlagSet("update", flag.ExitOnError)
		item := fs.String("item", "", "cart item id")
		qty := fs.Int("qty", 1, "quantity")
		fs.Parse(args)
		store.UpdateItem(ctx, cartstore.UpdateRequest{ItemID: *item, Quantity: *qty})
	case "remove":
		fs := flag.NewFlagSet("remove", flag.ExitOnError)
		item := fs.String("item", "", "cart item id")
		fs.Parse(args)
		store.RemoveItem(ctx, *item)
	case "clear":
		store.ClearCart(ctx)
	case "migrate":
		fs := flag.NewFlagSet("migrate", flag.ExitOnError)
		user := fs.String("user", "", "authenticated user id")
		fs.Parse(args)
		if *user == "" {
			logger.Fatal("migrate requires -user")
		}
		client.SetUserID(*user)
		store.MigrateSessionCart(ctx)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	snap := store.Snapshot()
	out, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		logger.Fatalf("encode snapshot: %v", err)
	}
	fmt.Println(string(out))

	if snap.Err != nil {
		os.Exit(1)
	}
}
