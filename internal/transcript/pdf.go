package transcript

import (
	"strings"

	"github.com/ledongthuc/pdf"
)

// ExtractText extracts plain text from a PDF page by page, joined with
// newlines. A page that yields no extractable text contributes an empty
// string so page ordering is preserved.
func ExtractText(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	pages := make([]string, 0, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// Unextractable page, keep the slot
			pages = append(pages, "")
			continue
		}
		pages = append(pages, text)
	}

	return strings.Join(pages, "\n"), nil
}
