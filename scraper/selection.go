// scraper/selection.go
package scraper

import (
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"github.com/gewnthar/crewsched/rules"
)

// findByNameOrID returns the first element with the given name attribute,
// falling back to the element with the given id. tag may be "" for any element.
func findByNameOrID(s *goquery.Selection, tag, name, id string) *goquery.Selection {
	byName := s.Find(fmt.Sprintf(`%s[name="%s"]`, tag, name)).First()
	if byName.Length() > 0 {
		return byName
	}
	return s.Find(fmt.Sprintf(`%s[id="%s"]`, tag, id)).First()
}

// tableRows returns a table's own rows in order, looking through thead/tbody/tfoot
// but not into nested tables.
func tableRows(table *goquery.Selection) []*goquery.Selection {
	var rows []*goquery.Selection
	table.Children().Each(func(_ int, child *goquery.Selection) {
		switch goquery.NodeName(child) {
		case "tr":
			rows = append(rows, child)
		case "thead", "tbody", "tfoot":
			child.ChildrenFiltered("tr").Each(func(_ int, tr *goquery.Selection) {
				rows = append(rows, tr)
			})
		}
	})
	return rows
}

// rowCells returns the trimmed text of a row's own cells.
func rowCells(tr *goquery.Selection) rules.Cells {
	var raw []string
	tr.ChildrenFiltered("td, th").Each(func(_ int, td *goquery.Selection) {
		raw = append(raw, td.Text())
	})
	return rules.NewCells(raw)
}

func toRow(tr *goquery.Selection) rules.Row {
	class, _ := tr.Attr("class")
	return rules.Row{Kind: rules.KindOf(class), Cells: rowCells(tr), Text: tr.Text()}
}

func attr(s *goquery.Selection, name string) string {
	v, _ := s.Attr(name)
	return v
}
