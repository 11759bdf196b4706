package blob

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var disableConfigDir sync.Once

// SplitPDF writes every page of the PDF in rs to its own single-page PDF.
func SplitPDF(rs io.ReadSeeker) ([][]byte, error) {
	// pdfcpu otherwise creates a config directory under the user's home.
	disableConfigDir.Do(api.DisableConfigDir)

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	count, err := api.PageCount(rs, conf)
	if err != nil {
		return nil, fmt.Errorf("failed to count pages: %w", err)
	}

	pages := make([][]byte, 0, count)
	for i := 1; i <= count; i++ {
		if _, err := rs.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		if err := api.Trim(rs, &buf, []string{strconv.Itoa(i)}, conf); err != nil {
			return nil, fmt.Errorf("failed to extract page %d: %w", i, err)
		}
		pages = append(pages, buf.Bytes())
	}
	return pages, nil
}
