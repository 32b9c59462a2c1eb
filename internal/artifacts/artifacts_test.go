package artifacts

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

const testDoc = `# Refund Policy

Customers may request a refund within thirty days of delivery. Refunds
are issued to the original payment method within five business days.

# Cancellations

Orders can be cancelled before they ship. Ask for the order number and
collect the cancellation reason before filing the support ticket.
`

func writeDoc(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sop.md")
	if err := os.WriteFile(path, []byte(testDoc), 0644); err != nil {
		t.Fatalf("writing doc: %v", err)
	}
	return path
}

func searchIDs(t *testing.T, b *Bundle, query string, k int) []int {
	t.Helper()
	results, err := b.Index.Search(b.Vectorizer.Transform(query), k)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	ids := make([]int, len(results))
	for i, r := range results {
		ids[i] = r.ChunkID
	}
	return ids
}

func TestBuild(t *testing.T) {
	b, err := Build(writeDoc(t), BuildOptions{ChunkWords: 20})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(b.Chunks) == 0 {
		t.Fatal("expected chunks")
	}
	if b.Index.Len() != len(b.Chunks) {
		t.Errorf("index has %d vectors for %d chunks", b.Index.Len(), len(b.Chunks))
	}
	if b.Index.Dimension() != b.Vectorizer.Dimension() {
		t.Errorf("index dimension %d, vectorizer dimension %d", b.Index.Dimension(), b.Vectorizer.Dimension())
	}
}

func TestBuildReportsProgress(t *testing.T) {
	var calls int
	var lastDone, lastTotal int
	_, err := Build(writeDoc(t), BuildOptions{ChunkWords: 10, Progress: func(done, total int) {
		calls++
		lastDone, lastTotal = done, total
	}})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if calls == 0 {
		t.Fatal("expected progress callbacks")
	}
	if lastDone != lastTotal {
		t.Errorf("final progress %d/%d, expected completion", lastDone, lastTotal)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	b, err := Build(writeDoc(t), BuildOptions{ChunkWords: 15})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	dir := filepath.Join(t.TempDir(), "index")
	store := NewStore(dir)
	if store.Exists() {
		t.Fatal("store should not exist before save")
	}
	if err := store.Save(b); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !store.Exists() {
		t.Fatal("store should exist after save")
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(loaded.Chunks, b.Chunks) {
		t.Error("loaded chunks differ from saved chunks")
	}

	// Retrieval must be identical before and after persistence.
	query := "how do I cancel my order"
	if before, after := searchIDs(t, b, query, 2), searchIDs(t, loaded, query, 2); !reflect.DeepEqual(before, after) {
		t.Fatalf("retrieval differs after reload: %v vs %v", before, after)
	}
}

func TestSaveReplacesExistingBundle(t *testing.T) {
	first, err := Build(writeDoc(t), BuildOptions{ChunkWords: 15})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	dir := filepath.Join(t.TempDir(), "index")
	store := NewStore(dir)
	if err := store.Save(first); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// A second save over the same directory must swap in the new bundle
	// and leave no backup directory behind.
	otherDoc := filepath.Join(t.TempDir(), "sop.md")
	if err := os.WriteFile(otherDoc, []byte("# Shipping\n\nOrders ship within two days of payment.\n"), 0644); err != nil {
		t.Fatalf("writing doc: %v", err)
	}
	second, err := Build(otherDoc, BuildOptions{ChunkWords: 15})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if err := store.Save(second); err != nil {
		t.Fatalf("Save over existing bundle: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(loaded.Chunks, second.Chunks) {
		t.Error("loaded chunks are not from the most recent save")
	}
	if _, err := os.Stat(dir + ".old"); !os.IsNotExist(err) {
		t.Errorf("backup directory left behind: stat err %v", err)
	}
}

func TestExistsRejectsVersionMismatch(t *testing.T) {
	b, err := Build(writeDoc(t), BuildOptions{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	dir := filepath.Join(t.TempDir(), "index")
	store := NewStore(dir)
	if err := store.Save(b); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// Rewrite the manifest with a stale version.
	stale, _ := json.Marshal(manifest{Version: "0"})
	if err := os.WriteFile(filepath.Join(dir, manifestFile), stale, 0644); err != nil {
		t.Fatalf("writing stale manifest: %v", err)
	}

	if store.Exists() {
		t.Error("Exists should reject a version-mismatched bundle")
	}
	if _, err := store.Load(); err == nil {
		t.Error("Load should reject a version-mismatched bundle")
	}
}

func TestExistsRejectsPartialBundle(t *testing.T) {
	b, err := Build(writeDoc(t), BuildOptions{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	dir := filepath.Join(t.TempDir(), "index")
	store := NewStore(dir)
	if err := store.Save(b); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if err := os.Remove(filepath.Join(dir, indexFile)); err != nil {
		t.Fatalf("removing index file: %v", err)
	}
	if store.Exists() {
		t.Error("Exists should reject a bundle with missing files")
	}
}

func TestOpenRebuildsOnCorruptBundle(t *testing.T) {
	sopPath := writeDoc(t)
	dir := filepath.Join(t.TempDir(), "index")
	store := NewStore(dir)

	b, err := Build(sopPath, BuildOptions{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if err := store.Save(b); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// Corrupt the vectorizer; Open must fall back to a rebuild.
	if err := os.WriteFile(filepath.Join(dir, vectorizerFile), []byte("{"), 0644); err != nil {
		t.Fatalf("corrupting vectorizer: %v", err)
	}

	opened, err := Open(store, sopPath, BuildOptions{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if len(opened.Chunks) != len(b.Chunks) {
		t.Errorf("rebuilt bundle has %d chunks, want %d", len(opened.Chunks), len(b.Chunks))
	}
}

func TestOpenBuildsWhenMissing(t *testing.T) {
	sopPath := writeDoc(t)
	store := NewStore(filepath.Join(t.TempDir(), "index"))

	b, err := Open(store, sopPath, BuildOptions{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if len(b.Chunks) == 0 {
		t.Fatal("expected chunks from fresh build")
	}
	if !store.Exists() {
		t.Error("Open should persist the freshly built bundle")
	}
}
