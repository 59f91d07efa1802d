package ingest

import (
	"strings"
	"unicode"

	"askpdf/internal/domain"
)

// Splitter cuts extracted document text into overlapping passages. Size and
// Overlap are rune counts; MaxChunks is a hard ceiling that rejects a
// document before anything is embedded or indexed.
type Splitter struct {
	Size      int
	Overlap   int
	MaxChunks int
}

// NewSplitter returns a splitter with the given parameters.
func NewSplitter(size, overlap, maxChunks int) *Splitter {
	return &Splitter{Size: size, Overlap: overlap, MaxChunks: maxChunks}
}

// Split joins the text blocks and cuts them into chunks of roughly Size
// runes, each carrying the last Overlap runes of its predecessor. Chunk
// boundaries prefer whitespace near the target size so words stay intact.
// Trailing content shorter than Size is always emitted, never dropped.
// The output is deterministic for identical input.
func (s *Splitter) Split(blocks []string) ([]string, error) {
	text := strings.TrimSpace(strings.Join(blocks, "\n"))
	if text == "" {
		return nil, nil
	}

	runes := []rune(text)
	if len(runes) <= s.Size {
		return []string{text}, nil
	}

	var chunks []string
	start := 0
	for start < len(runes) {
		end := start + s.Size
		if end >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			break
		}

		// Walk back from the hard boundary looking for whitespace, but no
		// further than the overlap would reach on the next chunk.
		cut := end
		floor := start + s.Size - s.Overlap/2
		for i := end; i > floor; i-- {
			if unicode.IsSpace(runes[i-1]) {
				cut = i
				break
			}
		}

		chunks = append(chunks, string(runes[start:cut]))
		if len(chunks) > s.MaxChunks {
			return nil, domain.ErrDocumentTooLarge
		}

		next := cut - s.Overlap
		if next <= start {
			next = start + s.Size - s.Overlap
		}
		start = next
	}

	if len(chunks) > s.MaxChunks {
		return nil, domain.ErrDocumentTooLarge
	}
	return chunks, nil
}
