package ipam_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moimran/netdata/modules/ipam"
	"github.com/moimran/netdata/pkg/crud"
)

func vlanCache(t *testing.T) *crud.ReferenceCache {
	t.Helper()
	cache := crud.NewReferenceCache(staticFetcher{
		ipam.VLANGroups: {
			{"id": float64(1), "name": "campus", "vid_ranges": "100-199,300-399"},
			{"id": float64(2), "name": "unbounded"},
		},
	}, nil)
	require.Empty(t, cache.Load(context.Background(), ipam.VLANGroups))
	return cache
}

func runVlanValidators(refs *crud.ReferenceCache, draft crud.Record) crud.ValidationErrors {
	errs := crud.ValidationErrors{}
	for _, v := range ipam.Validators(ipam.VLANs, refs) {
		v(draft, errs)
	}
	return errs
}

func TestVLANValidator_VidInGroupRanges(t *testing.T) {
	refs := vlanCache(t)

	errs := runVlanValidators(refs, crud.Record{"vid": int64(150), "group_id": int64(1)})
	assert.Empty(t, errs)

	errs = runVlanValidators(refs, crud.Record{"vid": int64(250), "group_id": int64(1)})
	require.True(t, errs.Has("vid"))
	assert.Contains(t, errs["vid"], "100-199,300-399")
}

func TestVLANValidator_NoGroupUnconstrained(t *testing.T) {
	refs := vlanCache(t)
	assert.Empty(t, runVlanValidators(refs, crud.Record{"vid": int64(4000)}))
}

func TestVLANValidator_GroupWithoutRanges(t *testing.T) {
	refs := vlanCache(t)
	assert.Empty(t, runVlanValidators(refs, crud.Record{"vid": int64(4000), "group_id": int64(2)}))
}

func TestVLANValidator_WireBounds(t *testing.T) {
	refs := vlanCache(t)
	assert.True(t, runVlanValidators(refs, crud.Record{"vid": int64(0)}).Has("vid"))
	assert.True(t, runVlanValidators(refs, crud.Record{"vid": int64(4095)}).Has("vid"))
}

func TestVLANGroupValidator_RangesParse(t *testing.T) {
	errs := crud.ValidationErrors{}
	for _, v := range ipam.Validators(ipam.VLANGroups, nil) {
		v(crud.Record{"vid_ranges": "200-100"}, errs)
	}
	assert.True(t, errs.Has("vid_ranges"))

	errs = crud.ValidationErrors{}
	for _, v := range ipam.Validators(ipam.VLANGroups, nil) {
		v(crud.Record{"vid_ranges": "100-199"}, errs)
	}
	assert.Empty(t, errs)
}

func TestValidators_OtherTypesHaveNone(t *testing.T) {
	assert.Nil(t, ipam.Validators(ipam.Sites, nil))
}
