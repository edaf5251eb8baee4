package crud

import (
	"context"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// FieldFilter is a single server-side field-equality filter.
type FieldFilter struct {
	Field string
	Value string
}

// ListParams mirror the IPAM API's listing query: free-text search, one
// optional field filter, offset/limit paging.
type ListParams struct {
	Search string
	Filter *FieldFilter
	Offset int
	Limit  int
}

// Lister fetches one page of records; implemented by the IPAM API client.
type Lister interface {
	List(ctx context.Context, t EntityType, p ListParams) ([]Record, int64, error)
}

type CellKind string

const (
	CellText     CellKind = "text"
	CellBadge    CellKind = "badge"
	CellBool     CellKind = "bool"
	CellNumber   CellKind = "number"
	CellDateTime CellKind = "datetime"
)

type Cell struct {
	Kind CellKind
	Text string
	// Tone is the badge color name for CellBadge cells.
	Tone string
}

type TableColumn struct {
	Name  string
	Label string
}

type TableRow struct {
	ID    int64
	Cells []Cell
}

// Table is the renderer-agnostic view model of one listing page.
type Table struct {
	Entity  EntityType
	Columns []TableColumn
	Rows    []TableRow
	Total   int64
	Page    int
	Limit   int
	Search  string
	HasMore bool
}

var statusTones = map[string]string{
	"active":     "green",
	"reserved":   "amber",
	"deprecated": "red",
	"available":  "sky",
	"container":  "violet",
	"dhcp":       "blue",
	"slaac":      "blue",
}

var numberPrinter = message.NewPrinter(language.English)

// BuildTable formats one page of records into a table view model: one
// column per schema field, one row per record, cell formatting delegated to
// the schema and reference cache.
func BuildTable(schema Schema, records []Record, refs *ReferenceCache, p ListParams, total int64) *Table {
	t := &Table{
		Entity: schema.Type,
		Total:  total,
		Limit:  p.Limit,
		Search: p.Search,
	}
	if p.Limit > 0 {
		t.Page = p.Offset/p.Limit + 1
		t.HasMore = int64(p.Offset+len(records)) < total
	}
	for _, f := range schema.Fields {
		t.Columns = append(t.Columns, TableColumn{Name: f.Name, Label: f.DisplayLabel()})
	}
	for _, rec := range records {
		id, _ := rec.ID()
		row := TableRow{ID: id, Cells: make([]Cell, 0, len(schema.Fields))}
		for _, f := range schema.Fields {
			row.Cells = append(row.Cells, FormatCell(f, rec, refs))
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// FormatCell renders one record value for the listing: references resolve
// to labels, status to a colored badge, booleans to Yes/No, numbers
// locale-formatted, datetimes to a locale string, everything else raw.
func FormatCell(f Field, rec Record, refs *ReferenceCache) Cell {
	v, ok := rec[f.Name]
	if !ok || v == nil {
		return Cell{Kind: CellText, Text: ""}
	}

	if f.Reference != "" && refs != nil {
		if id, ok := AsInt64(v); ok && id != 0 {
			return Cell{Kind: CellText, Text: refs.Label(f.Reference, id)}
		}
		return Cell{Kind: CellText, Text: ""}
	}

	if f.Name == "status" || f.Name == "role" {
		text := AsString(v)
		tone, ok := statusTones[text]
		if !ok {
			tone = "zinc"
		}
		return Cell{Kind: CellBadge, Text: text, Tone: tone}
	}

	switch f.Type {
	case BoolFieldType:
		if b, _ := v.(bool); b {
			return Cell{Kind: CellBool, Text: "Yes"}
		}
		return Cell{Kind: CellBool, Text: "No"}
	case IntFieldType:
		if n, ok := AsInt64(v); ok {
			return Cell{Kind: CellNumber, Text: numberPrinter.Sprintf("%d", n)}
		}
		return Cell{Kind: CellText, Text: AsString(v)}
	default:
		if s := AsString(v); s != "" {
			if ts, ok := parseTimestamp(s); ok {
				return Cell{Kind: CellDateTime, Text: ts.Local().Format("Jan 2, 2006 15:04")}
			}
			return Cell{Kind: CellText, Text: s}
		}
		return Cell{Kind: CellText, Text: ""}
	}
}

func parseTimestamp(s string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05"} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
