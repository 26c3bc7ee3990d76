package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/wealthdesk/wealthdesk/internal/config"
	"github.com/wealthdesk/wealthdesk/internal/seed"
	"github.com/wealthdesk/wealthdesk/internal/store/document"
	"github.com/wealthdesk/wealthdesk/internal/store/relational"
)

func main() {
	target := flag.String("target", "all", "stores to seed: all|relational|document")
	flag.Parse()

	cfg, err := config.LoadFromEnv("wealthdesk-seed")
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	switch *target {
	case "all", "relational", "document":
	default:
		fmt.Fprintf(os.Stderr, "invalid target: %s\n", *target)
		os.Exit(1)
	}

	if *target == "all" || *target == "relational" {
		if err := seedRelational(ctx, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "relational seed failed: %v\n", err)
			os.Exit(1)
		}
	}
	if *target == "all" || *target == "document" {
		if err := seedDocument(ctx, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "document seed failed: %v\n", err)
			os.Exit(1)
		}
	}
}

func seedRelational(ctx context.Context, cfg config.Config) error {
	db, err := relational.Open(ctx, relational.DBConfig{
		Driver:       cfg.Relational.Driver,
		DSN:          cfg.Relational.DSN,
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	})
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	inserted, err := seed.Relational(ctx, db, cfg.Relational.Driver)
	if err != nil {
		return err
	}
	fmt.Printf("seeded %d portfolio row(s) into %s\n", inserted, cfg.Relational.Driver)
	return nil
}

func seedDocument(ctx context.Context, cfg config.Config) error {
	client, coll, err := document.Connect(ctx, document.ClientConfig{
		URI:        cfg.Document.URI,
		Database:   cfg.Document.Database,
		Collection: cfg.Document.Collection,
	})
	if err != nil {
		return err
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	inserted, err := seed.Document(ctx, seed.MongoClients(coll))
	if err != nil {
		return err
	}
	fmt.Printf("seeded %d client profile(s) into %s.%s\n", inserted, cfg.Document.Database, cfg.Document.Collection)
	return nil
}
