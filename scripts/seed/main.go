// Command seed populates a running catalog service with storefront products
// through its HTTP API.
//
//	go run ./scripts/seed -catalog http://localhost:8002 -count 200
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"time"

	"github.com/pzron/ecom-sub002/pkg/httpclient"
	"github.com/pzron/ecom-sub002/pkg/logger"
)

type productDef struct {
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	Category      string  `json:"category"`
	Price         int64   `json:"price"`
	OriginalPrice *int64  `json:"original_price,omitempty"`
	ImageURL      string  `json:"image_url,omitempty"`
	Rating        float64 `json:"rating"`
	InStock       bool    `json:"in_stock"`
}

// catalogNouns maps each seeded category to product nouns and a base price
// in cents.
var catalogNouns = map[string]struct {
	nouns []string
	base  int64
}{
	"Electronics":    {[]string{"Headphones", "Smartwatch", "Bluetooth Speaker", "Power Bank", "Webcam"}, 4999},
	"Fashion":        {[]string{"Denim Jacket", "Sneakers", "Wool Scarf", "Leather Belt", "Linen Shirt"}, 2999},
	"Home & Kitchen": {[]string{"Chef Knife", "French Press", "Cast Iron Pan", "Blender", "Table Lamp"}, 3499},
	"Beauty":         {[]string{"Face Serum", "Hair Dryer", "Lip Balm Set", "Perfume", "Clay Mask"}, 1999},
	"Sports":         {[]string{"Yoga Mat", "Dumbbell Pair", "Running Shorts", "Water Bottle", "Jump Rope"}, 1499},
	"Books":          {[]string{"Cookbook", "Mystery Novel", "Travel Guide", "Poetry Collection", "Sci-Fi Saga"}, 1299},
}

var adjectives = []string{"Classic", "Premium", "Compact", "Everyday", "Deluxe", "Eco", "Pro", "Vintage"}

func main() {
	catalogURL := flag.String("catalog", envOr("CATALOG_URL", "http://localhost:8002"), "catalog service base URL")
	count := flag.Int("count", 60, "number of products to create")
	seed := flag.Uint64("seed", 42, "random seed; equal seeds produce equal catalogs")
	flag.Parse()

	log := logger.New("seed", envOr("LOG_LEVEL", "info"))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	client := httpclient.New(httpclient.DefaultConfig())
	created := 0
	for _, p := range generate(*count, *seed) {
		if err := post(ctx, client, *catalogURL+"/api/v1/products", p); err != nil {
			log.Warn("product not created", slog.String("name", p.Name), slog.String("error", err.Error()))
			continue
		}
		created++
	}

	log.Info("seeding finished", slog.Int("created", created), slog.Int("requested", *count))
	if created == 0 && *count > 0 {
		os.Exit(1)
	}
}

func generate(n int, seed uint64) []productDef {
	r := rand.New(rand.NewPCG(seed, seed))
	categories := []string{"Electronics", "Fashion", "Home & Kitchen", "Beauty", "Sports", "Books"}

	out := make([]productDef, 0, n)
	for i := range n {
		category := categories[i%len(categories)]
		def := catalogNouns[category]
		noun := def.nouns[r.IntN(len(def.nouns))]
		adj := adjectives[r.IntN(len(adjectives))]

		price := def.base + int64(r.IntN(40))*250
		p := productDef{
			Name:        fmt.Sprintf("%s %s %d", adj, noun, i+1),
			Description: fmt.Sprintf("%s %s from our %s range.", adj, noun, category),
			Category:    category,
			Price:       price,
			Rating:      float64(30+r.IntN(21)) / 10,
			InStock:     r.IntN(10) > 0,
		}
		if r.IntN(4) == 0 {
			orig := price + price/4
			p.OriginalPrice = &orig
		}
		out = append(out, p)
	}
	return out
}

func post(ctx context.Context, client *httpclient.Client, url string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(ctx, req)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return httpclient.ParseResponseError(resp, "catalog")
	}
	return resp.Body.Close()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
