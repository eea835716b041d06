package extract

import (
	"errors"
	"strings"

	"github.com/biolens/BioLensAPI/internal/domain/reportModel"
	"github.com/biolens/BioLensAPI/pkg/logger_i"
)

type rawPage struct {
	Number  int    `json:"number"`
	Content string `json:"content"`
}

// ErrNoText means the document parsed but not a single page produced text,
// typically a scanned report without an OCR layer.
var ErrNoText = errors.New("no text could be extracted from any page")

// PDF extracts page-ordered text from blood-report PDFs. Stateless; nothing
// is cached across calls.
type PDF struct {
	logger *logger_i.Logger
}

func NewPDF() *PDF {
	return &PDF{logger: logger_i.NewLogger("Report Extraction")}
}

// assemble turns recovered pages into the page-ordered text object. Pages
// that yielded nothing stay in the sequence as empty strings; extraction
// succeeds as long as at least one page carries text.
func assemble(pages []rawPage, pageCount int) (reportModel.ExtractedText, error) {
	ordered := make([]string, pageCount)
	for _, p := range pages {
		if p.Number >= 1 && p.Number <= pageCount {
			ordered[p.Number-1] = p.Content
		}
	}

	hasText := false
	for _, content := range ordered {
		if strings.TrimSpace(content) != "" {
			hasText = true
			break
		}
	}
	if !hasText {
		return reportModel.ExtractedText{}, ErrNoText
	}

	return reportModel.ExtractedText{
		Pages:     ordered,
		Text:      strings.Join(ordered, "\n"),
		PageCount: pageCount,
	}, nil
}
