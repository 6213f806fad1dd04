// findexbench exercises a Findex index with concurrent inserts against a
// fresh Badger-backed Memory, printing throughput and a final search
// count. It is a debugging aid, not a benchmark harness with statistical
// guarantees.
package main

import (
	"context"
	"crypto/rand"
	"flag"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/i5heu/findex"
	"github.com/i5heu/findex/pkg/keyschedule"
	"github.com/i5heu/findex/pkg/memory/badgerstore"
)

func main() {
	writers := flag.Int("writers", 64, "number of concurrent inserting goroutines")
	perWriter := flag.Int("per-writer", 100, "values each writer inserts")
	keyword := flag.String("keyword", "bench", "keyword all writers insert under")
	flag.Parse()

	dir := "./tmp/findexbench-" + uuid.NewString()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		fmt.Fprintln(os.Stderr, "create data dir:", err)
		os.Exit(1)
	}
	defer os.RemoveAll(dir)

	store, err := badgerstore.Open(badgerstore.Config{Path: dir})
	if err != nil {
		fmt.Fprintln(os.Stderr, "open store:", err)
		os.Exit(1)
	}
	defer store.Close()

	var seed keyschedule.Seed
	if _, err := rand.Read(seed[:]); err != nil {
		fmt.Fprintln(os.Stderr, "generate seed:", err)
		os.Exit(1)
	}

	f, err := findex.New(seed, store)
	if err != nil {
		fmt.Fprintln(os.Stderr, "new findex:", err)
		os.Exit(1)
	}

	ctx := context.Background()
	start := time.Now()

	var wg sync.WaitGroup
	for w := 0; w < *writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < *perWriter; i++ {
				value := fmt.Sprintf("w%d-v%d-%s", w, i, uuid.NewString())
				if err := f.Insert(ctx, []byte(*keyword), [][]byte{[]byte(value)}); err != nil {
					fmt.Fprintln(os.Stderr, "insert:", err)
					return
				}
			}
		}(w)
	}
	wg.Wait()

	elapsed := time.Since(start)
	total := *writers * *perWriter

	got, err := f.Search(ctx, []byte(*keyword))
	if err != nil {
		fmt.Fprintln(os.Stderr, "search:", err)
		os.Exit(1)
	}

	fmt.Printf("inserted %d values across %d writers in %s (%.0f/s)\n", total, *writers, elapsed, float64(total)/elapsed.Seconds())
	fmt.Printf("search returned %d values (want %d)\n", len(got), total)
	if len(got) != total {
		os.Exit(1)
	}
}
