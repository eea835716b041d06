package extract

import (
	"errors"
	"fmt"
	"time"

	"github.com/biolens/BioLensAPI/internal/config"
	"github.com/biolens/BioLensAPI/internal/domain/reportModel"
	"github.com/dslipak/pdf"
)

// Extract parses the saved upload page by page. A page the parser chokes on
// is skipped, not fatal; a document the parser cannot open at all is.
func (e *PDF) Extract(path string) (reportModel.ExtractedText, error) {
	e.logger.Debug("Extract", "attempting extraction", path)
	f, err := pdf.Open(path)
	if err != nil {
		e.logger.Error("failed opening of pdf file", "error", err)
		return reportModel.ExtractedText{}, fmt.Errorf("failed to open pdf: %w", err)
	}

	numPages := f.NumPage()
	e.logger.Debug("Extract", "number of pages", numPages)
	if numPages > config.MaxReportPageCount {
		return reportModel.ExtractedText{}, &reportModel.Rejection{
			Reason:  reportModel.TooManyPages,
			Message: fmt.Sprintf("PDF exceeds maximum page limit of %d", config.MaxReportPageCount),
		}
	}

	var pages []rawPage
	for i := 1; i <= numPages; i++ {
		page := f.Page(i)
		if page.V.IsNull() {
			e.logger.Debug("Extract", "null page", i)
			continue
		}

		content, err := protectExtract(page)
		if err != nil {
			// keep going with the other pages
			e.logger.Error("Error parsing page content", "page", i, "Error", err)
			continue
		}

		pages = append(pages, rawPage{
			Number:  i,
			Content: content,
		})
	}

	return assemble(pages, numPages)
}

// protectExtract guards against parser hangs on malformed pages.
func protectExtract(page pdf.Page) (string, error) {
	type result struct {
		content string
		err     error
	}
	resChan := make(chan result, 1)

	go func() {
		content, err := page.GetPlainText(nil)
		resChan <- result{content, err}
	}()
	select {
	case r := <-resChan:
		return r.content, r.err
	case <-time.After(time.Second * 10):
		return "", errors.New("timeout")
	}
}
