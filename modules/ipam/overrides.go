package ipam

import (
	"github.com/moimran/netdata/pkg/crud"
)

// IPRoleOptions is the fixed functional-role vocabulary of an IP address,
// distinct from the generic status vocabulary.
func IPRoleOptions() []crud.Option {
	return []crud.Option{
		{Value: "", Label: ""},
		{Value: "loopback", Label: "Loopback"},
		{Value: "secondary", Label: "Secondary"},
		{Value: "anycast", Label: "Anycast"},
		{Value: "vip", Label: "VIP"},
		{Value: "vrrp", Label: "VRRP"},
		{Value: "hsrp", Label: "HSRP"},
		{Value: "glbp", Label: "GLBP"},
		{Value: "carp", Label: "CARP"},
	}
}

// Overrides builds the entity-specific rule set evaluated before the
// generic rules.
func Overrides() []crud.Rule {
	return []crud.Rule{
		crud.SuppressFields(VLANGroups, "min_vid", "max_vid"),
		crud.StaticSelect(IPAddresses, "role", "", IPRoleOptions()...),
		credentialNamePicker(),
	}
}

// credentialNamePicker renders devices.credential_name as a picker over the
// credentials list keyed by name rather than id; the device record stores
// the credential's name.
func credentialNamePicker() crud.Rule {
	return crud.Rule{
		Name: "picker-devices-credential-name",
		When: func(t crud.EntityType, f crud.Field) bool {
			return t == Devices && f.Name == "credential_name"
		},
		Render: func(rc *crud.RenderContext, f crud.Field) *crud.Control {
			ctrl := &crud.Control{
				Kind:      crud.ControlPicker,
				Label:     "Credential",
				Clearable: true,
			}
			var rows []crud.Record
			if rc.Refs != nil {
				rows = rc.Refs.Rows(Credentials)
			}
			if len(rows) == 0 {
				ctrl.Disabled = true
				ctrl.Placeholder = "No Credentials available"
				return ctrl
			}
			for _, rec := range rows {
				name := crud.AsString(rec["name"])
				if name == "" {
					continue
				}
				ctrl.Options = append(ctrl.Options, crud.Option{Value: name, Label: name})
			}
			ctrl.Value = crud.AsString(rc.Draft[f.Name])
			ctrl.Placeholder = "Select Credential"
			return ctrl
		},
	}
}
