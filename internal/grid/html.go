package grid

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ReadHTML reads the first <table> of an HTML document. Cells covered by a
// colspan or rowspan are left empty so columns stay aligned.
func ReadHTML(r io.Reader) (Grid, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}

	table := doc.Find("table").First()
	if table.Length() == 0 {
		return Grid{}, nil
	}

	var g Grid
	pending := make(map[int]int) // column -> rows still covered by a rowspan above

	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		var row Row
		col := 0

		skipCovered := func() {
			for pending[col] > 0 {
				pending[col]--
				if pending[col] == 0 {
					delete(pending, col)
				}
				row = append(row, nil)
				col++
			}
		}

		tr.ChildrenFiltered("th, td").Each(func(_ int, td *goquery.Selection) {
			skipCovered()

			text := strings.TrimSpace(td.Text())
			colspan := spanAttr(td, "colspan")
			rowspan := spanAttr(td, "rowspan")

			for k := 0; k < colspan; k++ {
				if k == 0 && text != "" {
					row = append(row, text)
				} else {
					row = append(row, nil)
				}
				if rowspan > 1 {
					pending[col] = rowspan - 1
				}
				col++
			}
		})
		skipCovered()

		g = append(g, row)
	})

	return g, nil
}

func spanAttr(s *goquery.Selection, name string) int {
	v, ok := s.Attr(name)
	if !ok {
		return 1
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 1 {
		return 1
	}
	return n
}
