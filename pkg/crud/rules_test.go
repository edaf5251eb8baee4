package crud_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moimran/netdata/pkg/crud"
)

// stubFetcher serves canned reference data per entity type; types mapped to
// a nil slice with ok=false fail the load.
type stubFetcher struct {
	rows map[crud.EntityType][]crud.Record
	errs map[crud.EntityType]error
}

func (s *stubFetcher) ListAll(_ context.Context, t crud.EntityType) ([]crud.Record, error) {
	if err, ok := s.errs[t]; ok {
		return nil, err
	}
	return s.rows[t], nil
}

func loadedCache(t *testing.T, rows map[crud.EntityType][]crud.Record) *crud.ReferenceCache {
	t.Helper()
	cache := crud.NewReferenceCache(&stubFetcher{rows: rows}, nil)
	types := make([]crud.EntityType, 0, len(rows))
	for typ := range rows {
		types = append(types, typ)
	}
	failures := cache.Load(context.Background(), types...)
	require.Empty(t, failures)
	return cache
}

func TestRenderer_SuppressesID(t *testing.T) {
	r := crud.NewRenderer()
	ctrl := r.RenderField(&crud.RenderContext{Entity: "sites", Draft: crud.Record{}},
		crud.Field{Name: "id", Type: crud.IntFieldType})
	assert.Nil(t, ctrl)
}

func TestRenderer_StatusDefaultsToActive(t *testing.T) {
	r := crud.NewRenderer()
	ctrl := r.RenderField(&crud.RenderContext{Entity: "prefixes", Draft: crud.Record{}},
		crud.Field{Name: "status", Type: crud.StringFieldType, Required: true})
	require.NotNil(t, ctrl)
	assert.Equal(t, crud.ControlSelect, ctrl.Kind)
	assert.Equal(t, "active", ctrl.Value)
	assert.True(t, ctrl.Required)
	assert.Len(t, ctrl.Options, 4)
}

func TestRenderer_StatusKeepsDraftValue(t *testing.T) {
	r := crud.NewRenderer()
	ctrl := r.RenderField(&crud.RenderContext{Entity: "prefixes", Draft: crud.Record{"status": "reserved"}},
		crud.Field{Name: "status", Type: crud.StringFieldType})
	require.NotNil(t, ctrl)
	assert.Equal(t, "reserved", ctrl.Value)
}

func TestRenderer_ReferencePicker(t *testing.T) {
	cache := loadedCache(t, map[crud.EntityType][]crud.Record{
		"vrfs": {
			{"id": float64(1), "name": "prod", "rd": "65000:1"},
			{"id": float64(2), "rd": "65000:2"},
		},
	})
	r := crud.NewRenderer()
	ctrl := r.RenderField(
		&crud.RenderContext{Entity: "prefixes", Draft: crud.Record{"vrf_id": float64(2)}, Refs: cache},
		crud.Field{Name: "vrf_id", Type: crud.ForeignKeyFieldType, Reference: "vrfs"})
	require.NotNil(t, ctrl)
	assert.Equal(t, crud.ControlPicker, ctrl.Kind)
	assert.Equal(t, "VRF", ctrl.Label)
	assert.Equal(t, "2", ctrl.Value)
	assert.True(t, ctrl.Clearable, "optional foreign keys are clearable")
	require.Len(t, ctrl.Options, 2)
	assert.Equal(t, "prod", ctrl.Options[0].Label, "name preferred over rd")
	assert.Equal(t, "65000:2", ctrl.Options[1].Label, "rd fallback when name absent")
	assert.Equal(t, "Select VRF", ctrl.Placeholder)
}

func TestRenderer_EmptyReferenceListDisablesPicker(t *testing.T) {
	cache := loadedCache(t, map[crud.EntityType][]crud.Record{"vrfs": {}})
	r := crud.NewRenderer()
	ctrl := r.RenderField(
		&crud.RenderContext{Entity: "prefixes", Draft: crud.Record{}, Refs: cache},
		crud.Field{Name: "vrf_id", Type: crud.ForeignKeyFieldType, Reference: "vrfs"})
	require.NotNil(t, ctrl)
	assert.True(t, ctrl.Disabled)
	assert.Equal(t, "No VRFs available", ctrl.Placeholder)
	assert.Empty(t, ctrl.Options)
}

func TestRenderer_SelfReferenceExcludesEditedRecord(t *testing.T) {
	cache := loadedCache(t, map[crud.EntityType][]crud.Record{
		"regions": {
			{"id": float64(1), "name": "emea"},
			{"id": float64(2), "name": "amer"},
		},
	})
	r := crud.NewRenderer()
	ctrl := r.RenderField(
		&crud.RenderContext{Entity: "regions", Draft: crud.Record{"id": float64(2)}, Refs: cache, EditID: 2},
		crud.Field{Name: "parent_id", Type: crud.ForeignKeyFieldType, Reference: "regions"})
	require.NotNil(t, ctrl)
	require.Len(t, ctrl.Options, 1)
	assert.Equal(t, "emea", ctrl.Options[0].Label)
}

func TestRenderer_SelfReferenceKeptInAddMode(t *testing.T) {
	cache := loadedCache(t, map[crud.EntityType][]crud.Record{
		"regions": {{"id": float64(1), "name": "emea"}},
	})
	r := crud.NewRenderer()
	ctrl := r.RenderField(
		&crud.RenderContext{Entity: "regions", Draft: crud.Record{}, Refs: cache},
		crud.Field{Name: "parent_id", Type: crud.ForeignKeyFieldType, Reference: "regions"})
	require.NotNil(t, ctrl)
	assert.Len(t, ctrl.Options, 1)
}

func TestRenderer_BooleanToggle(t *testing.T) {
	r := crud.NewRenderer()
	ctrl := r.RenderField(&crud.RenderContext{Entity: "prefixes", Draft: crud.Record{"is_pool": true}},
		crud.Field{Name: "is_pool", Type: crud.BoolFieldType})
	require.NotNil(t, ctrl)
	assert.Equal(t, crud.ControlCheckbox, ctrl.Kind)
	assert.True(t, ctrl.Checked)
}

func TestRenderer_NumberInput(t *testing.T) {
	r := crud.NewRenderer()
	ctrl := r.RenderField(&crud.RenderContext{Entity: "vlans", Draft: crud.Record{"vid": float64(100)}},
		crud.Field{Name: "vid", Type: crud.IntFieldType, Required: true})
	require.NotNil(t, ctrl)
	assert.Equal(t, crud.ControlNumber, ctrl.Kind)
	assert.Equal(t, "100", ctrl.Value)
}

func TestRenderer_MultilineText(t *testing.T) {
	r := crud.NewRenderer()
	for _, name := range []string{"description", "comments"} {
		ctrl := r.RenderField(&crud.RenderContext{Entity: "sites", Draft: crud.Record{name: "notes"}},
			crud.Field{Name: name, Type: crud.StringFieldType})
		require.NotNil(t, ctrl)
		assert.Equal(t, crud.ControlTextarea, ctrl.Kind, name)
		assert.Equal(t, "notes", ctrl.Value)
	}
}

func TestRenderer_ReadonlyMetadata(t *testing.T) {
	r := crud.NewRenderer()
	ctrl := r.RenderField(&crud.RenderContext{Entity: "sites", Draft: crud.Record{"created_at": "2026-01-01T00:00:00Z"}},
		crud.Field{Name: "created_at", Type: crud.StringFieldType})
	require.NotNil(t, ctrl)
	assert.True(t, ctrl.Disabled)
}

func TestRenderer_TextFallback(t *testing.T) {
	r := crud.NewRenderer()
	ctrl := r.RenderField(&crud.RenderContext{Entity: "sites", Draft: crud.Record{"name": "hq"}},
		crud.Field{Name: "name", Type: crud.StringFieldType, Required: true})
	require.NotNil(t, ctrl)
	assert.Equal(t, crud.ControlText, ctrl.Kind)
	assert.Equal(t, "hq", ctrl.Value)
	assert.Equal(t, "Name", ctrl.Label)
}

func TestRenderer_OverridesWinOverBaseRules(t *testing.T) {
	r := crud.NewRenderer(crud.StaticSelect("ip_addresses", "role", "",
		crud.Option{Value: "loopback", Label: "Loopback"},
		crud.Option{Value: "vip", Label: "VIP"},
	))
	ctrl := r.RenderField(&crud.RenderContext{Entity: "ip_addresses", Draft: crud.Record{}},
		crud.Field{Name: "role", Type: crud.StringFieldType})
	require.NotNil(t, ctrl)
	assert.Equal(t, crud.ControlSelect, ctrl.Kind)
	require.Len(t, ctrl.Options, 2)

	// The same field on another entity type falls through to the base rules.
	other := r.RenderField(&crud.RenderContext{Entity: "devices", Draft: crud.Record{}},
		crud.Field{Name: "role", Type: crud.StringFieldType})
	require.NotNil(t, other)
	assert.Equal(t, crud.ControlText, other.Kind)
}

func TestRenderer_SuppressFieldsOverride(t *testing.T) {
	r := crud.NewRenderer(crud.SuppressFields("vlan_groups", "min_vid", "max_vid"))
	schema := crud.Schema{
		Type: "vlan_groups",
		Fields: []crud.Field{
			{Name: "id", Type: crud.IntFieldType},
			{Name: "name", Type: crud.StringFieldType, Required: true},
			{Name: "min_vid", Type: crud.IntFieldType},
			{Name: "max_vid", Type: crud.IntFieldType},
			{Name: "vid_ranges", Type: crud.StringFieldType},
		},
	}
	controls := r.RenderForm(&crud.RenderContext{Entity: "vlan_groups", Draft: crud.Record{}}, schema)
	require.Len(t, controls, 2)
	assert.Equal(t, "name", controls[0].Name)
	assert.Equal(t, "vid_ranges", controls[1].Name)
}

func TestRenderer_ErrorsAttached(t *testing.T) {
	errs := crud.ValidationErrors{}
	errs.Set("name", "Name is required")
	r := crud.NewRenderer()
	ctrl := r.RenderField(&crud.RenderContext{Entity: "sites", Draft: crud.Record{}, Errors: errs},
		crud.Field{Name: "name", Type: crud.StringFieldType, Required: true})
	require.NotNil(t, ctrl)
	assert.Equal(t, "Name is required", ctrl.Error)
}

func TestReferenceCache_IsolatedFailures(t *testing.T) {
	fetcher := &stubFetcher{
		rows: map[crud.EntityType][]crud.Record{
			"vrfs": {{"id": float64(1), "name": "prod"}},
		},
		errs: map[crud.EntityType]error{
			"sites": errors.New("upstream down"),
		},
	}
	cache := crud.NewReferenceCache(fetcher, nil)

	failures := cache.Load(context.Background(), "vrfs", "sites")
	require.Len(t, failures, 1)

	var lerr *crud.ReferenceLoadError
	require.ErrorAs(t, failures["sites"], &lerr)
	assert.Equal(t, crud.EntityType("sites"), lerr.Type)

	assert.Len(t, cache.Rows("vrfs"), 1)
	assert.True(t, cache.Has("sites"), "failed type stores an empty list")
	assert.Empty(t, cache.Rows("sites"))
}

func TestReferenceCache_LabelFallsBackToID(t *testing.T) {
	cache := loadedCache(t, map[crud.EntityType][]crud.Record{
		"vrfs": {{"id": float64(9), "name": "prod"}},
	})
	assert.Equal(t, "prod", cache.Label("vrfs", 9))
	assert.Equal(t, "12", cache.Label("vrfs", 12))
	assert.Equal(t, "3", cache.Label("tenants", 3), "unloaded type")
}

func TestReferenceCache_Invalidate(t *testing.T) {
	cache := loadedCache(t, map[crud.EntityType][]crud.Record{
		"vrfs": {{"id": float64(1), "name": "prod"}},
	})
	cache.Invalidate("vrfs")
	assert.False(t, cache.Has("vrfs"))
	assert.Nil(t, cache.Rows("vrfs"))
}

func TestRecordLabel_Preference(t *testing.T) {
	assert.Equal(t, "prod", crud.RecordLabel(crud.Record{"id": float64(1), "name": "prod", "rd": "65000:1"}))
	assert.Equal(t, "65000:1", crud.RecordLabel(crud.Record{"id": float64(1), "rd": "65000:1"}))
	assert.Equal(t, "10.0.0.0/8", crud.RecordLabel(crud.Record{"id": float64(1), "prefix": "10.0.0.0/8"}))
	assert.Equal(t, "10.0.0.1/32", crud.RecordLabel(crud.Record{"id": float64(1), "address": "10.0.0.1/32"}))
	assert.Equal(t, "7", crud.RecordLabel(crud.Record{"id": float64(7)}))
}
