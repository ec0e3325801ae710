package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/mbeaumont/elostream/internal/hubfast"
)

// hubcheck is a connectivity probe: it lists one partition's shards and
// pulls the first rows page so a misconfigured base URL, token, or
// partition fails loudly before a real run.
func main() {
	baseURL := os.Getenv("HUB_BASE_URL")
	dataset := os.Getenv("DATASET")
	token := os.Getenv("HUB_TOKEN")

	if baseURL == "" {
		log.Fatal("HUB_BASE_URL is required")
	}
	if dataset == "" {
		dataset = "Lichess/standard-chess-games"
	}

	year := atoiDefault(os.Getenv("YEAR"), 2015)
	month := atoiDefault(os.Getenv("MONTH"), 1)

	client := hubfast.NewClient(baseURL, dataset,
		hubfast.WithToken(token),
		hubfast.WithTimeout(8*time.Second),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	shards, err := client.ListShards(ctx, year, month)
	if err != nil {
		log.Fatalf("list shards error: %v", err)
	}
	log.Printf("partition %d-%02d: %d shard(s)", year, month, len(shards))
	for _, s := range shards {
		log.Printf("  %s (%d bytes)", s.Path, s.Size)
	}

	page, err := client.FetchRows(ctx, shards[0].Path, 0, 3)
	if err != nil {
		log.Fatalf("fetch rows error: %v", err)
	}
	log.Printf("first shard reports %d rows total", page.NumRowsTotal)
	for _, row := range page.Rows {
		fmt.Printf("row %d: white=%v black=%v result=%v\n",
			row.Idx, row.Fields["White"], row.Fields["Black"], row.Fields["Result"])
	}
}

func atoiDefault(s string, def int) int {
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}
