package findex

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/i5heu/findex/pkg/keyschedule"
	"github.com/i5heu/findex/pkg/memory"
	"github.com/i5heu/findex/pkg/memory/badgerstore"
	"github.com/i5heu/findex/pkg/memory/inmemory"
	"github.com/stretchr/testify/require"
)

func values(vs ...string) [][]byte {
	out := make([][]byte, len(vs))
	for i, v := range vs {
		out[i] = []byte(v)
	}
	return out
}

func asStrings(t *testing.T, vs [][]byte) []string {
	t.Helper()
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = string(v)
	}
	return out
}

// Scenario 1: insert "cat" -> {1, 3, 5}; search("cat") returns {1, 3, 5}.
func TestScenarioBasicInsertAndSearch(t *testing.T) {
	f, err := New(keyschedule.Seed{1}, inmemory.New())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, f.Insert(ctx, []byte("cat"), values("1", "3", "5")))

	got, err := f.Search(ctx, []byte("cat"))
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"1", "3", "5"}, asStrings(t, got))
}

// Scenario 2: insert "cat" -> {1}; delete "cat" {1}; insert "cat" {1};
// search("cat") returns {1}.
func TestScenarioDeleteThenReinsert(t *testing.T) {
	f, err := New(keyschedule.Seed{2}, inmemory.New())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, f.Insert(ctx, []byte("cat"), values("1")))
	require.NoError(t, f.Delete(ctx, []byte("cat"), values("1")))
	require.NoError(t, f.Insert(ctx, []byte("cat"), values("1")))

	got, err := f.Search(ctx, []byte("cat"))
	require.NoError(t, err)
	require.Equal(t, []string{"1"}, asStrings(t, got))
}

// Scenario 3: keyword isolation across "dog", "cat", and an
// untouched "fish".
func TestScenarioKeywordIsolation(t *testing.T) {
	f, err := New(keyschedule.Seed{3}, inmemory.New())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, f.Insert(ctx, []byte("dog"), values("2", "4")))
	require.NoError(t, f.Insert(ctx, []byte("cat"), values("1", "3")))

	cat, err := f.Search(ctx, []byte("cat"))
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"1", "3"}, asStrings(t, cat))

	dog, err := f.Search(ctx, []byte("dog"))
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"2", "4"}, asStrings(t, dog))

	fish, err := f.Search(ctx, []byte("fish"))
	require.NoError(t, err)
	require.Empty(t, fish)
}

// Scenario 4: 100 concurrent writers, one unique integer each, under
// the same keyword; final search equals the full set.
func TestScenarioConcurrentWriters(t *testing.T) {
	f, err := New(keyschedule.Seed{4}, inmemory.New())
	require.NoError(t, err)
	ctx := context.Background()

	const n = 100
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			require.NoError(t, f.Insert(ctx, []byte("k"), values(fmt.Sprintf("%d", i))))
		}(i)
	}
	wg.Wait()

	got, err := f.Search(ctx, []byte("k"))
	require.NoError(t, err)

	want := make([]string, n)
	for i := range want {
		want[i] = fmt.Sprintf("%d", i)
	}
	require.ElementsMatch(t, want, asStrings(t, got))
}

// Scenario 5: a large value round-trips byte-for-byte.
func TestScenarioLargeValueRoundTrip(t *testing.T) {
	f, err := New(keyschedule.Seed{5}, inmemory.New())
	require.NoError(t, err)
	ctx := context.Background()

	big := make([]byte, 10*1024)
	for i := range big {
		big[i] = byte(i % 256)
	}

	require.NoError(t, f.Insert(ctx, []byte("big"), [][]byte{big}))

	got, err := f.Search(ctx, []byte("big"))
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, big, got[0])
}

// Scenario 6: a second Findex instance, built from the same seed over
// the same Memory after the first is dropped, sees the first's writes.
func TestScenarioReopenWithSameSeed(t *testing.T) {
	seed := keyschedule.Seed{6}
	mem := inmemory.New()
	ctx := context.Background()

	a, err := New(seed, mem)
	require.NoError(t, err)
	require.NoError(t, a.Insert(ctx, []byte("x"), values("y")))

	b, err := New(seed, mem)
	require.NoError(t, err)
	got, err := b.Search(ctx, []byte("x"))
	require.NoError(t, err)
	require.Equal(t, []string{"y"}, asStrings(t, got))
}

// P7 Memory-interface equivalence: the same operation sequence against
// two independent in-memory Memory instances yields identical search
// results (TestMemoryInterfaceEquivalenceAcrossBackends compares the
// in-memory and Badger-backed implementations).
func TestMemoryInterfaceEquivalence(t *testing.T) {
	seed := keyschedule.Seed{7}
	ctx := context.Background()

	run := func(mem memory.Memory) []string {
		f, err := New(seed, mem)
		require.NoError(t, err)
		require.NoError(t, f.Insert(ctx, []byte("kw"), values("a", "b", "c")))
		require.NoError(t, f.Delete(ctx, []byte("kw"), values("b")))
		got, err := f.Search(ctx, []byte("kw"))
		require.NoError(t, err)
		return asStrings(t, got)
	}

	a := run(inmemory.New())
	b := run(inmemory.New())
	require.ElementsMatch(t, a, b)
	require.ElementsMatch(t, []string{"a", "c"}, a)
}

// TestMemoryInterfaceEquivalenceAcrossBackends extends P7 across the two
// shipped reference implementations: in-memory and Badger-backed.
func TestMemoryInterfaceEquivalenceAcrossBackends(t *testing.T) {
	seed := keyschedule.Seed{10}
	ctx := context.Background()

	dir, err := os.MkdirTemp("", "findex-p7-*")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	badgerMem, err := badgerstore.Open(badgerstore.Config{Path: dir})
	require.NoError(t, err)
	t.Cleanup(func() { badgerMem.Close() })

	run := func(mem memory.Memory) []string {
		f, err := New(seed, mem)
		require.NoError(t, err)
		require.NoError(t, f.Insert(ctx, []byte("kw"), values("a", "b", "c")))
		require.NoError(t, f.Delete(ctx, []byte("kw"), values("b")))
		got, err := f.Search(ctx, []byte("kw"))
		require.NoError(t, err)
		return asStrings(t, got)
	}

	a := run(inmemory.New())
	b := run(badgerMem)
	require.ElementsMatch(t, a, b)
}

func TestSearchUnknownKeywordIsEmpty(t *testing.T) {
	f, err := New(keyschedule.Seed{8}, inmemory.New())
	require.NoError(t, err)

	got, err := f.Search(context.Background(), []byte("nope"))
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestInsertEmptyValuesIsNoOp(t *testing.T) {
	f, err := New(keyschedule.Seed{9}, inmemory.New())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, f.Insert(ctx, []byte("kw"), nil))
	got, err := f.Search(ctx, []byte("kw"))
	require.NoError(t, err)
	require.Empty(t, got)
}
