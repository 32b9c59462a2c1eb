package sop

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// DefaultChunkWords is the target chunk size in words.
const DefaultChunkWords = 200

// Chunk is a bounded unit of the support-procedure document. IDs are
// ordinal positions starting at 1; the sequence order matches the source
// document.
type Chunk struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

// headingRe matches top-level section markers (# and ## headings).
var headingRe = regexp.MustCompile(`^#{1,2}\s`)

// ChunkDocument splits the document into ordered chunks. Sections are split
// first so no chunk crosses a top-level heading boundary, then words are
// accumulated greedily up to targetWords per chunk. A trailing partial chunk
// is kept. Joining all chunk words reproduces the document's word sequence.
func ChunkDocument(content string, targetWords int) []Chunk {
	if targetWords <= 0 {
		targetWords = DefaultChunkWords
	}

	var chunks []Chunk
	for _, section := range splitSections(content) {
		words := strings.Fields(section)
		for start := 0; start < len(words); start += targetWords {
			end := start + targetWords
			if end > len(words) {
				end = len(words)
			}
			chunks = append(chunks, Chunk{
				ID:   len(chunks) + 1,
				Text: strings.Join(words[start:end], " "),
			})
		}
	}
	return chunks
}

// splitSections splits the document before every top-level heading line.
// Heading text stays with its section so no content is dropped.
func splitSections(content string) []string {
	lines := strings.Split(content, "\n")
	var sections []string
	var current []string

	flush := func() {
		if len(current) > 0 {
			sections = append(sections, strings.Join(current, "\n"))
			current = nil
		}
	}

	for _, line := range lines {
		if headingRe.MatchString(line) {
			flush()
		}
		current = append(current, line)
	}
	flush()
	return sections
}

// LoadDocument reads the support-procedure document and chunks it.
// An empty document is an error: the assistant cannot retrieve from nothing.
func LoadDocument(path string, targetWords int) ([]Chunk, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading SOP document %s: %w", path, err)
	}
	chunks := ChunkDocument(string(data), targetWords)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("SOP document %s contains no text", path)
	}
	return chunks, nil
}
