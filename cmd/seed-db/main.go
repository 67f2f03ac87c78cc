// Command seed-db loads a development data set: catalog products (with
// their listing flags), directory listings, and an optional API key for
// the checkout endpoint.
package main

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/velvetree/listing-checkout/internal/metadata"
	"github.com/velvetree/listing-checkout/internal/storage/postgres"
)

type seedFile struct {
	Products []productJSON `json:"products"`
	Listings []listingJSON `json:"listings"`
}

type productJSON struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Parent    string          `json:"parent,omitempty"`
	Recurring bool            `json:"recurring,omitempty"`
	IsListing bool            `json:"is_listing,omitempty"`
}

type listingJSON struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

func main() {
	var (
		databaseURL  string
		seedPath     string
		apiKey       string
		apiKeyPepper string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&seedPath, "seed-file", "db/seed/catalog.json", "path to seed JSON file")
	flag.StringVar(&apiKey, "api-key", "", "API key to seed (or DIR_SEED_API_KEY env)")
	flag.StringVar(&apiKeyPepper, "api-key-pepper", "", "HMAC pepper for API key hashing (or DIR_API_KEY_PEPPER env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if apiKey == "" {
		apiKey = os.Getenv("DIR_SEED_API_KEY")
	}
	if apiKeyPepper == "" {
		apiKeyPepper = os.Getenv("DIR_API_KEY_PEPPER")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, seedPath, apiKey, apiKeyPepper); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, seedPath, apiKey, apiKeyPepper string) error {
	raw, err := os.ReadFile(seedPath)
	if err != nil {
		return errors.Wrapf(err, "read %s", seedPath)
	}

	var seed seedFile
	if err := json.Unmarshal(raw, &seed); err != nil {
		return errors.Wrapf(err, "parse %s", seedPath)
	}

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedCatalog(ctx, pool, seed); err != nil {
		return err
	}

	if apiKey != "" {
		if apiKeyPepper == "" {
			return errors.New("seeding an api key requires --api-key-pepper")
		}
		if err := seedAPIKey(ctx, pool, apiKey, apiKeyPepper); err != nil {
			return errors.Wrap(err, "seed api key")
		}
	}

	return nil
}

func seedCatalog(ctx context.Context, pool *pgxpool.Pool, seed seedFile) error {
	meta := postgres.NewMetadataRepository(pool)

	for _, p := range seed.Products {
		_, err := pool.Exec(ctx,
			`INSERT INTO products (id, name, price, parent_id, recurring)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (id) DO UPDATE
			 SET name = EXCLUDED.name, price = EXCLUDED.price,
			     parent_id = EXCLUDED.parent_id, recurring = EXCLUDED.recurring`,
			p.ID, p.Name, p.Price, p.Parent, p.Recurring,
		)
		if err != nil {
			return errors.Wrapf(err, "upsert product %s", p.ID)
		}
		if p.IsListing {
			if err := meta.SetFlagOnce(ctx, p.ID, metadata.KeyListing); err != nil {
				return errors.Wrapf(err, "flag product %s", p.ID)
			}
		}
	}
	slog.Info("products seeded", slog.Int("count", len(seed.Products)))

	for _, l := range seed.Listings {
		_, err := pool.Exec(ctx,
			`INSERT INTO listings (id, title) VALUES ($1, $2)
			 ON CONFLICT (id) DO UPDATE SET title = EXCLUDED.title`,
			l.ID, l.Title,
		)
		if err != nil {
			return errors.Wrapf(err, "upsert listing %s", l.ID)
		}
	}
	slog.Info("listings seeded", slog.Int("count", len(seed.Listings)))

	return nil
}

func seedAPIKey(ctx context.Context, pool *pgxpool.Pool, key, pepper string) error {
	mac := hmac.New(sha256.New, []byte(pepper))
	mac.Write([]byte(key))
	hash := hex.EncodeToString(mac.Sum(nil))

	_, err := pool.Exec(ctx,
		`INSERT INTO api_keys (id, key_hash, name, scopes)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (key_hash) DO NOTHING`,
		uuid.New().String(), hash, "seed", []string{"checkout"},
	)
	if err != nil {
		return err
	}

	slog.Info("api key seeded")
	return nil
}
