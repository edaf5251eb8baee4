package components

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"

	"github.com/a-h/templ"

	"github.com/moimran/netdata/pkg/crud"
)

// EntityTable renders one listing page: search box, rows with edit links
// and htmx-backed delete buttons, pagination. basePath is the entity's
// controller mount, e.g. "/ipam/prefixes".
func EntityTable(theme Theme, table *crud.Table, basePath string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<div id="%s-table">`, esc(string(table.Entity))); err != nil {
			return err
		}
		if err := writeToolbar(w, theme, table, basePath); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, `<table class="%s"><thead><tr>`, esc(theme.Table)); err != nil {
			return err
		}
		for _, col := range table.Columns {
			if _, err := fmt.Fprintf(w, `<th class="%s">%s</th>`, esc(theme.TableHead), esc(col.Label)); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, `<th class="%s"></th></tr></thead><tbody>`, esc(theme.TableHead)); err != nil {
			return err
		}
		for _, row := range table.Rows {
			if err := writeRow(w, theme, table, row, basePath); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, `</tbody></table>`); err != nil {
			return err
		}
		if err := writePagination(w, theme, table, basePath); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</div>`)
		return err
	})
}

func writeToolbar(w io.Writer, theme Theme, table *crud.Table, basePath string) error {
	_, err := fmt.Fprintf(w,
		`<div class="flex items-center justify-between pb-4">`+
			`<form method="get" action="%s"><input class="%s" type="search" name="search" value="%s" placeholder="Search"></form>`+
			`<a class="%s" href="%s/new">Add %s</a>`+
			`</div>`,
		esc(basePath), esc(theme.SearchBox), esc(table.Search),
		esc(theme.ButtonMain), esc(basePath), esc(crud.SingularLabel(table.Entity)))
	return err
}

func writeRow(w io.Writer, theme Theme, table *crud.Table, row crud.TableRow, basePath string) error {
	if _, err := fmt.Fprintf(w, `<tr class="%s">`, esc(theme.TableRow)); err != nil {
		return err
	}
	for i, cell := range row.Cells {
		if err := writeCell(w, theme, table, row, i, cell, basePath); err != nil {
			return err
		}
	}
	// Delete needs an explicit confirmation; the row stays until the API
	// confirms.
	if _, err := fmt.Fprintf(w,
		`<td class="%s"><button class="%s" hx-delete="%s/%d" hx-target="#%s-table" hx-swap="outerHTML" hx-confirm="Delete this %s?">Delete</button></td>`,
		esc(theme.TableCell), esc(theme.ButtonDrop), esc(basePath), row.ID,
		esc(string(table.Entity)), esc(crud.SingularLabel(table.Entity))); err != nil {
		return err
	}
	_, err := io.WriteString(w, `</tr>`)
	return err
}

func writeCell(w io.Writer, theme Theme, table *crud.Table, row crud.TableRow, idx int, cell crud.Cell, basePath string) error {
	if _, err := fmt.Fprintf(w, `<td class="%s">`, esc(theme.TableCell)); err != nil {
		return err
	}
	content := esc(cell.Text)
	if cell.Kind == crud.CellBadge {
		content = fmt.Sprintf(`<span class="%s">%s</span>`, esc(theme.BadgeClass(cell.Tone)), esc(cell.Text))
	}
	// The first column links to the edit form.
	if idx == 0 {
		content = fmt.Sprintf(`<a href="%s/%d/edit">%s</a>`, esc(basePath), row.ID, content)
	}
	if _, err := io.WriteString(w, content); err != nil {
		return err
	}
	_, err := io.WriteString(w, `</td>`)
	return err
}

func writePagination(w io.Writer, theme Theme, table *crud.Table, basePath string) error {
	if table.Limit <= 0 {
		return nil
	}
	if _, err := fmt.Fprintf(w, `<div class="%s">`, esc(theme.Pagination)); err != nil {
		return err
	}
	if table.Page > 1 {
		if err := writePageLink(w, theme, table, basePath, table.Page-1, "Previous"); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, `<span>Page %d of %d (%d total)</span>`,
		table.Page, pageCount(table), table.Total); err != nil {
		return err
	}
	if table.HasMore {
		if err := writePageLink(w, theme, table, basePath, table.Page+1, "Next"); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, `</div>`)
	return err
}

func writePageLink(w io.Writer, theme Theme, table *crud.Table, basePath string, page int, label string) error {
	href := basePath + "?page=" + strconv.Itoa(page)
	if table.Search != "" {
		href += "&search=" + url.QueryEscape(table.Search)
	}
	_, err := fmt.Fprintf(w, `<a class="%s" href="%s">%s</a>`, esc(theme.NavLink), esc(href), esc(label))
	return err
}

func pageCount(table *crud.Table) int {
	if table.Limit <= 0 || table.Total == 0 {
		return 1
	}
	pages := int((table.Total + int64(table.Limit) - 1) / int64(table.Limit))
	if pages < 1 {
		return 1
	}
	return pages
}
