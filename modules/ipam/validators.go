package ipam

import (
	"fmt"

	"github.com/moimran/netdata/pkg/crud"
)

// Validators returns the entity-specific cross-field validators, closed
// over the reference cache for lookups into related entities.
func Validators(t crud.EntityType, refs *crud.ReferenceCache) []crud.CrossFieldValidator {
	switch t {
	case VLANs:
		return []crud.CrossFieldValidator{vlanVidInGroupRanges(refs)}
	case VLANGroups:
		return []crud.CrossFieldValidator{vlanGroupRangesParse}
	default:
		return nil
	}
}

// vlanVidInGroupRanges rejects a VLAN whose id falls outside its group's
// declared ranges. A VLAN without a group is unconstrained, and a group
// record missing from the cache does not block the save; the server is the
// authority then.
func vlanVidInGroupRanges(refs *crud.ReferenceCache) crud.CrossFieldValidator {
	return func(draft crud.Record, errs crud.ValidationErrors) {
		vid, ok := crud.AsInt64(draft["vid"])
		if !ok {
			return
		}
		if vid < MinVid || vid > MaxVid {
			errs.Set("vid", fmt.Sprintf("VLAN ID must be between %d and %d", MinVid, MaxVid))
			return
		}
		groupID, ok := crud.AsInt64(draft["group_id"])
		if !ok || groupID == 0 || refs == nil {
			return
		}
		var group crud.Record
		for _, rec := range refs.Rows(VLANGroups) {
			if id, ok := rec.ID(); ok && id == groupID {
				group = rec
				break
			}
		}
		if group == nil {
			return
		}
		expr := crud.AsString(group["vid_ranges"])
		if expr == "" {
			return
		}
		if !VidInRanges(vid, expr) {
			errs.Set("vid", fmt.Sprintf("VLAN ID %d is outside the group's ranges (%s)", vid, expr))
		}
	}
}

func vlanGroupRangesParse(draft crud.Record, errs crud.ValidationErrors) {
	expr := crud.AsString(draft["vid_ranges"])
	if expr == "" {
		return
	}
	if _, err := ParseVidRanges(expr); err != nil {
		errs.Set("vid_ranges", err.Error())
	}
}
