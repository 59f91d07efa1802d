package pdf

import (
	"fmt"
	"strings"

	"code.sajari.com/docconv"
)

// Extractor turns a file on disk into ordered text blocks. The actual PDF
// parsing is an external concern; this package only adapts it.
type Extractor interface {
	ExtractBlocks(path string) ([]string, error)
}

// DocconvExtractor extracts text with docconv.
type DocconvExtractor struct{}

var _ Extractor = (*DocconvExtractor)(nil)

func NewDocconvExtractor() *DocconvExtractor {
	return &DocconvExtractor{}
}

// ExtractBlocks converts the document and returns its non-empty lines in
// document order.
func (e *DocconvExtractor) ExtractBlocks(path string) ([]string, error) {
	res, err := docconv.ConvertPath(path)
	if err != nil {
		return nil, fmt.Errorf("failed to extract document text: %w", err)
	}
	return SplitBlocks(res.Body), nil
}

// SplitBlocks splits raw extracted text into trimmed, non-empty lines.
func SplitBlocks(text string) []string {
	var blocks []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			blocks = append(blocks, line)
		}
	}
	return blocks
}
