package crud_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moimran/netdata/pkg/crud"
)

func prefixSchema() crud.Schema {
	return crud.Schema{
		Type: "prefixes",
		Fields: []crud.Field{
			{Name: "prefix", Type: crud.StringFieldType, Required: true},
			{Name: "status", Type: crud.StringFieldType, Required: true},
			{Name: "vrf_id", Type: crud.ForeignKeyFieldType, Reference: "vrfs"},
			{Name: "is_pool", Type: crud.BoolFieldType},
			{Name: "child_count", Type: crud.IntFieldType},
			{Name: "created_at", Type: crud.StringFieldType},
		},
	}
}

func TestBuildTable(t *testing.T) {
	cache := loadedCache(t, map[crud.EntityType][]crud.Record{
		"vrfs": {{"id": float64(5), "name": "prod"}},
	})
	records := []crud.Record{
		{
			"id":          float64(1),
			"prefix":      "10.0.0.0/8",
			"status":      "active",
			"vrf_id":      float64(5),
			"is_pool":     true,
			"child_count": float64(1234),
			"created_at":  "2026-02-03T10:30:00Z",
		},
		{
			"id":     float64(2),
			"prefix": "192.168.0.0/16",
			"status": "deprecated",
		},
	}
	table := crud.BuildTable(prefixSchema(), records, cache, crud.ListParams{Offset: 0, Limit: 2}, 5)

	assert.Equal(t, crud.EntityType("prefixes"), table.Entity)
	assert.Equal(t, 1, table.Page)
	assert.True(t, table.HasMore)
	require.Len(t, table.Columns, 6)
	assert.Equal(t, "VRF", table.Columns[2].Label)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, int64(1), table.Rows[0].ID)

	cells := table.Rows[0].Cells
	assert.Equal(t, "10.0.0.0/8", cells[0].Text)
	assert.Equal(t, crud.CellBadge, cells[1].Kind)
	assert.Equal(t, "green", cells[1].Tone)
	assert.Equal(t, "prod", cells[2].Text, "reference resolves to label")
	assert.Equal(t, "Yes", cells[3].Text)
	assert.Equal(t, "1,234", cells[4].Text, "locale thousands separator")
	assert.Equal(t, crud.CellDateTime, cells[5].Kind)

	sparse := table.Rows[1].Cells
	assert.Equal(t, "red", sparse[1].Tone)
	assert.Equal(t, "", sparse[2].Text, "unset reference renders blank")
	assert.Equal(t, "No", sparse[3].Text)
}

func TestBuildTable_LastPage(t *testing.T) {
	records := []crud.Record{{"id": float64(3), "prefix": "10.1.0.0/16", "status": "reserved"}}
	table := crud.BuildTable(prefixSchema(), records, nil, crud.ListParams{Offset: 4, Limit: 2}, 5)
	assert.Equal(t, 3, table.Page)
	assert.False(t, table.HasMore)
}

func TestFormatCell_UnknownStatusTone(t *testing.T) {
	f := crud.Field{Name: "status", Type: crud.StringFieldType}
	cell := crud.FormatCell(f, crud.Record{"status": "quarantined"}, nil)
	assert.Equal(t, crud.CellBadge, cell.Kind)
	assert.Equal(t, "zinc", cell.Tone)
}

func TestFormatCell_MissingValue(t *testing.T) {
	f := crud.Field{Name: "description", Type: crud.StringFieldType}
	cell := crud.FormatCell(f, crud.Record{}, nil)
	assert.Equal(t, "", cell.Text)
}
