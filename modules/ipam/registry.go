// Package ipam defines the IPAM entity schemas, the renderer overrides and
// the cross-field validators, and registers one admin controller per entity
// type.
package ipam

import "github.com/moimran/netdata/pkg/crud"

// Entity types in navigation order. The set is closed at build time; there
// is no dynamic schema discovery.
const (
	Regions     crud.EntityType = "regions"
	SiteGroups  crud.EntityType = "site_groups"
	Sites       crud.EntityType = "sites"
	Locations   crud.EntityType = "locations"
	Tenants     crud.EntityType = "tenants"
	VRFs        crud.EntityType = "vrfs"
	RIRs        crud.EntityType = "rirs"
	Aggregates  crud.EntityType = "aggregates"
	Roles       crud.EntityType = "roles"
	Prefixes    crud.EntityType = "prefixes"
	IPRanges    crud.EntityType = "ip_ranges"
	IPAddresses crud.EntityType = "ip_addresses"
	VLANGroups  crud.EntityType = "vlan_groups"
	VLANs       crud.EntityType = "vlans"
	ASNs        crud.EntityType = "asns"
	Devices     crud.EntityType = "devices"
	Interfaces  crud.EntityType = "interfaces"
	Credentials crud.EntityType = "credentials"
)

// BuildRegistry assembles the full entity schema table. Field order is the
// form and table column order. Panics on schema mistakes; the table is
// static data and a bad entry is a programming error.
func BuildRegistry() *crud.Registry {
	r := crud.NewRegistry()

	r.MustRegister(crud.Schema{
		Type: Regions,
		Fields: []crud.Field{
			{Name: "id", Type: crud.IntFieldType},
			{Name: "name", Type: crud.StringFieldType, Required: true},
			{Name: "slug", Type: crud.StringFieldType, Required: true},
			{Name: "parent_id", Type: crud.ForeignKeyFieldType, Reference: Regions, Label: "Parent Region"},
			{Name: "description", Type: crud.StringFieldType},
		},
	})

	r.MustRegister(crud.Schema{
		Type: SiteGroups,
		Fields: []crud.Field{
			{Name: "id", Type: crud.IntFieldType},
			{Name: "name", Type: crud.StringFieldType, Required: true},
			{Name: "slug", Type: crud.StringFieldType, Required: true},
			{Name: "parent_id", Type: crud.ForeignKeyFieldType, Reference: SiteGroups, Label: "Parent Group"},
			{Name: "description", Type: crud.StringFieldType},
		},
	})

	r.MustRegister(crud.Schema{
		Type: Sites,
		Fields: []crud.Field{
			{Name: "id", Type: crud.IntFieldType},
			{Name: "name", Type: crud.StringFieldType, Required: true},
			{Name: "slug", Type: crud.StringFieldType, Required: true},
			{Name: "status", Type: crud.StringFieldType, Required: true},
			{Name: "region_id", Type: crud.ForeignKeyFieldType, Reference: Regions},
			{Name: "site_group_id", Type: crud.ForeignKeyFieldType, Reference: SiteGroups},
			{Name: "tenant_id", Type: crud.ForeignKeyFieldType, Reference: Tenants},
			{Name: "facility", Type: crud.StringFieldType},
			{Name: "physical_address", Type: crud.StringFieldType},
			{Name: "description", Type: crud.StringFieldType},
			{Name: "comments", Type: crud.StringFieldType},
			{Name: "created_at", Type: crud.StringFieldType},
		},
	})

	r.MustRegister(crud.Schema{
		Type: Locations,
		Fields: []crud.Field{
			{Name: "id", Type: crud.IntFieldType},
			{Name: "name", Type: crud.StringFieldType, Required: true},
			{Name: "slug", Type: crud.StringFieldType, Required: true},
			{Name: "site_id", Type: crud.ForeignKeyFieldType, Reference: Sites, Required: true},
			{Name: "parent_id", Type: crud.ForeignKeyFieldType, Reference: Locations, Label: "Parent Location"},
			{Name: "status", Type: crud.StringFieldType, Required: true},
			{Name: "description", Type: crud.StringFieldType},
		},
	})

	r.MustRegister(crud.Schema{
		Type: Tenants,
		Fields: []crud.Field{
			{Name: "id", Type: crud.IntFieldType},
			{Name: "name", Type: crud.StringFieldType, Required: true},
			{Name: "slug", Type: crud.StringFieldType, Required: true},
			{Name: "description", Type: crud.StringFieldType},
			{Name: "comments", Type: crud.StringFieldType},
		},
	})

	r.MustRegister(crud.Schema{
		Type: VRFs,
		Fields: []crud.Field{
			{Name: "id", Type: crud.IntFieldType},
			{Name: "name", Type: crud.StringFieldType, Required: true},
			{Name: "rd", Type: crud.StringFieldType, Label: "Route Distinguisher"},
			{Name: "tenant_id", Type: crud.ForeignKeyFieldType, Reference: Tenants},
			{Name: "enforce_unique", Type: crud.BoolFieldType, Label: "Enforce Unique Space"},
			{Name: "description", Type: crud.StringFieldType},
		},
	})

	r.MustRegister(crud.Schema{
		Type: RIRs,
		Fields: []crud.Field{
			{Name: "id", Type: crud.IntFieldType},
			{Name: "name", Type: crud.StringFieldType, Required: true},
			{Name: "slug", Type: crud.StringFieldType, Required: true},
			{Name: "is_private", Type: crud.BoolFieldType, Label: "Private Space"},
			{Name: "description", Type: crud.StringFieldType},
		},
	})

	r.MustRegister(crud.Schema{
		Type: Aggregates,
		Fields: []crud.Field{
			{Name: "id", Type: crud.IntFieldType},
			{Name: "prefix", Type: crud.StringFieldType, Required: true},
			{Name: "rir_id", Type: crud.ForeignKeyFieldType, Reference: RIRs, Required: true},
			{Name: "tenant_id", Type: crud.ForeignKeyFieldType, Reference: Tenants},
			{Name: "date_added", Type: crud.StringFieldType},
			{Name: "description", Type: crud.StringFieldType},
		},
	})

	r.MustRegister(crud.Schema{
		Type: Roles,
		Fields: []crud.Field{
			{Name: "id", Type: crud.IntFieldType},
			{Name: "name", Type: crud.StringFieldType, Required: true},
			{Name: "slug", Type: crud.StringFieldType, Required: true},
			{Name: "weight", Type: crud.IntFieldType},
			{Name: "description", Type: crud.StringFieldType},
		},
	})

	r.MustRegister(crud.Schema{
		Type: Prefixes,
		Fields: []crud.Field{
			{Name: "id", Type: crud.IntFieldType},
			{Name: "prefix", Type: crud.StringFieldType, Required: true},
			{Name: "status", Type: crud.StringFieldType, Required: true},
			{Name: "vrf_id", Type: crud.ForeignKeyFieldType, Reference: VRFs},
			{Name: "site_id", Type: crud.ForeignKeyFieldType, Reference: Sites},
			{Name: "vlan_id", Type: crud.ForeignKeyFieldType, Reference: VLANs},
			{Name: "role_id", Type: crud.ForeignKeyFieldType, Reference: Roles},
			{Name: "tenant_id", Type: crud.ForeignKeyFieldType, Reference: Tenants},
			{Name: "is_pool", Type: crud.BoolFieldType, Label: "Is a Pool"},
			{Name: "mark_utilized", Type: crud.BoolFieldType},
			{Name: "description", Type: crud.StringFieldType},
			{Name: "comments", Type: crud.StringFieldType},
			{Name: "created_at", Type: crud.StringFieldType},
		},
	})

	r.MustRegister(crud.Schema{
		Type: IPRanges,
		Fields: []crud.Field{
			{Name: "id", Type: crud.IntFieldType},
			{Name: "start_address", Type: crud.StringFieldType, Required: true},
			{Name: "end_address", Type: crud.StringFieldType, Required: true},
			{Name: "status", Type: crud.StringFieldType, Required: true},
			{Name: "vrf_id", Type: crud.ForeignKeyFieldType, Reference: VRFs},
			{Name: "role_id", Type: crud.ForeignKeyFieldType, Reference: Roles},
			{Name: "tenant_id", Type: crud.ForeignKeyFieldType, Reference: Tenants},
			{Name: "description", Type: crud.StringFieldType},
		},
	})

	r.MustRegister(crud.Schema{
		Type: IPAddresses,
		Fields: []crud.Field{
			{Name: "id", Type: crud.IntFieldType},
			{Name: "address", Type: crud.StringFieldType, Required: true},
			{Name: "status", Type: crud.StringFieldType, Required: true},
			{Name: "role", Type: crud.StringFieldType},
			{Name: "vrf_id", Type: crud.ForeignKeyFieldType, Reference: VRFs},
			{Name: "tenant_id", Type: crud.ForeignKeyFieldType, Reference: Tenants},
			{Name: "interface_id", Type: crud.ForeignKeyFieldType, Reference: Interfaces},
			{Name: "nat_inside_id", Type: crud.ForeignKeyFieldType, Reference: IPAddresses, Label: "NAT (Inside)"},
			{Name: "dns_name", Type: crud.StringFieldType, Label: "DNS Name"},
			{Name: "description", Type: crud.StringFieldType},
			{Name: "comments", Type: crud.StringFieldType},
			{Name: "created_at", Type: crud.StringFieldType},
		},
	})

	r.MustRegister(crud.Schema{
		Type: VLANGroups,
		Fields: []crud.Field{
			{Name: "id", Type: crud.IntFieldType},
			{Name: "name", Type: crud.StringFieldType, Required: true},
			{Name: "slug", Type: crud.StringFieldType, Required: true},
			{Name: "site_id", Type: crud.ForeignKeyFieldType, Reference: Sites},
			{Name: "vid_ranges", Type: crud.StringFieldType, Required: true, Label: "VID Ranges"},
			// Derived bounds maintained by the server, hidden from forms.
			{Name: "min_vid", Type: crud.IntFieldType},
			{Name: "max_vid", Type: crud.IntFieldType},
			{Name: "description", Type: crud.StringFieldType},
		},
	})

	r.MustRegister(crud.Schema{
		Type: VLANs,
		Fields: []crud.Field{
			{Name: "id", Type: crud.IntFieldType},
			{Name: "vid", Type: crud.IntFieldType, Required: true, Label: "VLAN ID"},
			{Name: "name", Type: crud.StringFieldType, Required: true},
			{Name: "status", Type: crud.StringFieldType, Required: true},
			{Name: "group_id", Type: crud.ForeignKeyFieldType, Reference: VLANGroups, Label: "VLAN Group"},
			{Name: "site_id", Type: crud.ForeignKeyFieldType, Reference: Sites},
			{Name: "tenant_id", Type: crud.ForeignKeyFieldType, Reference: Tenants},
			{Name: "role_id", Type: crud.ForeignKeyFieldType, Reference: Roles},
			{Name: "description", Type: crud.StringFieldType},
			{Name: "comments", Type: crud.StringFieldType},
		},
	})

	r.MustRegister(crud.Schema{
		Type: ASNs,
		Fields: []crud.Field{
			{Name: "id", Type: crud.IntFieldType},
			{Name: "asn", Type: crud.IntFieldType, Required: true, Label: "ASN"},
			{Name: "rir_id", Type: crud.ForeignKeyFieldType, Reference: RIRs},
			{Name: "tenant_id", Type: crud.ForeignKeyFieldType, Reference: Tenants},
			{Name: "description", Type: crud.StringFieldType},
			{Name: "comments", Type: crud.StringFieldType},
		},
	})

	r.MustRegister(crud.Schema{
		Type: Devices,
		Fields: []crud.Field{
			{Name: "id", Type: crud.IntFieldType},
			{Name: "name", Type: crud.StringFieldType, Required: true},
			{Name: "status", Type: crud.StringFieldType, Required: true},
			{Name: "site_id", Type: crud.ForeignKeyFieldType, Reference: Sites},
			{Name: "location_id", Type: crud.ForeignKeyFieldType, Reference: Locations},
			{Name: "tenant_id", Type: crud.ForeignKeyFieldType, Reference: Tenants},
			{Name: "mgmt_ip", Type: crud.StringFieldType, Label: "Management IP"},
			// String-typed on purpose: devices store the credential's name,
			// not its id. The renderer override keys the picker by name.
			{Name: "credential_name", Type: crud.StringFieldType, Reference: Credentials},
			{Name: "description", Type: crud.StringFieldType},
			{Name: "comments", Type: crud.StringFieldType},
		},
	})

	r.MustRegister(crud.Schema{
		Type: Interfaces,
		Fields: []crud.Field{
			{Name: "id", Type: crud.IntFieldType},
			{Name: "name", Type: crud.StringFieldType, Required: true},
			{Name: "device_id", Type: crud.ForeignKeyFieldType, Reference: Devices, Required: true},
			{Name: "enabled", Type: crud.BoolFieldType},
			{Name: "mtu", Type: crud.IntFieldType, Label: "MTU"},
			{Name: "mac_address", Type: crud.StringFieldType, Label: "MAC Address"},
			{Name: "description", Type: crud.StringFieldType},
		},
	})

	r.MustRegister(crud.Schema{
		Type: Credentials,
		Fields: []crud.Field{
			{Name: "id", Type: crud.IntFieldType},
			{Name: "name", Type: crud.StringFieldType, Required: true},
			{Name: "username", Type: crud.StringFieldType, Required: true},
			{Name: "password", Type: crud.StringFieldType},
			{Name: "enable_password", Type: crud.StringFieldType},
			{Name: "description", Type: crud.StringFieldType},
		},
	})

	if err := r.Validate(); err != nil {
		panic(err)
	}
	return r
}

// Defaults seed a new draft for the entity type; every status-bearing
// entity starts out active.
func Defaults(schema crud.Schema) crud.Record {
	defaults := crud.Record{}
	if schema.HasField("status") {
		defaults["status"] = "active"
	}
	if schema.Type == Interfaces {
		defaults["enabled"] = true
	}
	return defaults
}
