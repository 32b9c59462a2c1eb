package artifacts

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/orderdesk/orderdesk/internal/sop"
	"github.com/orderdesk/orderdesk/internal/tfidf"
	"github.com/orderdesk/orderdesk/internal/vecindex"
)

// FormatVersion tags persisted bundles. Any change to the chunker,
// vectorizer, or index serialization bumps this; a mismatch invalidates the
// whole bundle and triggers a rebuild.
const FormatVersion = "2"

const (
	manifestFile   = "manifest.json"
	vectorizerFile = "vectorizer.json"
	chunksFile     = "chunks.json"
	indexFile      = "index.gob"
)

// Bundle is the retrieval artifact set: the fitted vectorizer, the ordered
// chunk list, and the vector index. The three are only ever stored and
// loaded as a unit.
type Bundle struct {
	Vectorizer *tfidf.Vectorizer
	Chunks     []sop.Chunk
	Index      *vecindex.Index
}

type manifest struct {
	Version string `json:"version"`
}

// Store persists bundles under a directory, tagged with FormatVersion.
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Exists reports whether a complete bundle with a matching version is
// present. Partial or version-mismatched bundles report false.
func (s *Store) Exists() bool {
	data, err := os.ReadFile(filepath.Join(s.dir, manifestFile))
	if err != nil {
		return false
	}
	var m manifest
	if err := json.Unmarshal(data, &m); err != nil || m.Version != FormatVersion {
		return false
	}
	for _, name := range []string{vectorizerFile, chunksFile, indexFile} {
		if _, err := os.Stat(filepath.Join(s.dir, name)); err != nil {
			return false
		}
	}
	return true
}

// Save writes the bundle. All files are written into a temporary directory
// first and published with a rename, so a concurrent reader never observes
// a partial bundle.
func (s *Store) Save(b *Bundle) error {
	parent := filepath.Dir(s.dir)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return fmt.Errorf("creating artifact directory: %w", err)
	}

	tmp, err := os.MkdirTemp(parent, ".bundle-")
	if err != nil {
		return fmt.Errorf("creating temp bundle directory: %w", err)
	}
	defer os.RemoveAll(tmp)

	if err := writeJSON(filepath.Join(tmp, vectorizerFile), b.Vectorizer); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(tmp, chunksFile), b.Chunks); err != nil {
		return err
	}

	f, err := os.Create(filepath.Join(tmp, indexFile))
	if err != nil {
		return fmt.Errorf("creating %s: %w", indexFile, err)
	}
	if err := b.Index.Encode(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", indexFile, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", indexFile, err)
	}

	// Manifest last: its presence marks the bundle complete.
	if err := writeJSON(filepath.Join(tmp, manifestFile), manifest{Version: FormatVersion}); err != nil {
		return err
	}

	// Swap: set the previous bundle aside, publish the new one, then drop
	// the old copy. The old bundle stays recoverable until the new rename
	// has succeeded.
	old := s.dir + ".old"
	if err := os.RemoveAll(old); err != nil {
		return fmt.Errorf("clearing previous bundle backup: %w", err)
	}
	if err := os.Rename(s.dir, old); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("setting aside previous bundle: %w", err)
	}
	if err := os.Rename(tmp, s.dir); err != nil {
		os.Rename(old, s.dir)
		return fmt.Errorf("publishing bundle: %w", err)
	}
	os.RemoveAll(old)
	return nil
}

// Load reads a complete bundle. Any failure (missing file, corrupt file,
// version mismatch) returns an error; callers fall back to a full rebuild.
func (s *Store) Load() (*Bundle, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, manifestFile))
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	if m.Version != FormatVersion {
		return nil, fmt.Errorf("bundle version %q does not match expected %q", m.Version, FormatVersion)
	}

	var vec tfidf.Vectorizer
	if err := readJSON(filepath.Join(s.dir, vectorizerFile), &vec); err != nil {
		return nil, err
	}

	var chunks []sop.Chunk
	if err := readJSON(filepath.Join(s.dir, chunksFile), &chunks); err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("bundle contains no chunks")
	}

	f, err := os.Open(filepath.Join(s.dir, indexFile))
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", indexFile, err)
	}
	defer f.Close()
	index, err := vecindex.Decode(f)
	if err != nil {
		return nil, err
	}

	if index.Len() != len(chunks) {
		return nil, fmt.Errorf("bundle index has %d vectors for %d chunks", index.Len(), len(chunks))
	}
	if index.Dimension() != vec.Dimension() {
		return nil, fmt.Errorf("bundle index dimension %d does not match vectorizer dimension %d", index.Dimension(), vec.Dimension())
	}

	return &Bundle{Vectorizer: &vec, Chunks: chunks, Index: index}, nil
}

func writeJSON(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshalling %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	return nil
}
