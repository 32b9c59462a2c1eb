package artifacts

import (
	"fmt"
	"log"

	"github.com/orderdesk/orderdesk/internal/sop"
	"github.com/orderdesk/orderdesk/internal/tfidf"
	"github.com/orderdesk/orderdesk/internal/vecindex"
)

// BuildOptions control a full bundle build.
type BuildOptions struct {
	ChunkWords  int // target chunk size in words; 0 uses sop.DefaultChunkWords
	MaxFeatures int // vocabulary cap; 0 uses tfidf.DefaultMaxFeatures
	Progress    func(done, total int)
}

// Build runs the full pipeline: chunk the document, fit the vectorizer,
// vectorize every chunk, and build the index.
func Build(sopPath string, opts BuildOptions) (*Bundle, error) {
	chunks, err := sop.LoadDocument(sopPath, opts.ChunkWords)
	if err != nil {
		return nil, err
	}

	corpus := make([]string, len(chunks))
	for i, c := range chunks {
		corpus[i] = c.Text
	}

	vec := tfidf.New(opts.MaxFeatures)
	if err := vec.Fit(corpus); err != nil {
		return nil, fmt.Errorf("fitting vectorizer: %w", err)
	}

	index, err := vecindex.New(vec.Dimension())
	if err != nil {
		return nil, err
	}
	for i, text := range corpus {
		if err := index.Add([][]float64{vec.Transform(text)}); err != nil {
			return nil, fmt.Errorf("indexing chunk %d: %w", chunks[i].ID, err)
		}
		if opts.Progress != nil {
			opts.Progress(i+1, len(corpus))
		}
	}

	return &Bundle{Vectorizer: vec, Chunks: chunks, Index: index}, nil
}

// Open loads a compatible persisted bundle, or rebuilds from the SOP
// document when none is usable. A failed load falls back to a rebuild; a
// failed save is logged and the in-memory bundle is used for the rest of
// the process lifetime.
func Open(store *Store, sopPath string, opts BuildOptions) (*Bundle, error) {
	if store.Exists() {
		b, err := store.Load()
		if err == nil {
			return b, nil
		}
		log.Printf("artifacts: loading bundle failed, rebuilding: %v", err)
	}

	b, err := Build(sopPath, opts)
	if err != nil {
		return nil, err
	}
	if err := store.Save(b); err != nil {
		log.Printf("artifacts: saving bundle failed, continuing in-memory: %v", err)
	}
	return b, nil
}
