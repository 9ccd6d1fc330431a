package textextract

import (
	"strings"

	pdflib "github.com/ledongthuc/pdf"
)

// readPDFTextLayer pulls the embedded text layer out of a PDF. Scanned
// PDFs typically yield little or nothing here, which is what the engine
// uses to decide on the OCR fallback.
func readPDFTextLayer(path string) (string, int, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	var b strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\f")
		}
		b.WriteString(text)
	}
	return b.String(), numPages, nil
}
