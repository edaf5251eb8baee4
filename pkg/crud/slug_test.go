package crud_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/moimran/netdata/pkg/crud"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Ashburn DC-1":      "ashburn-dc-1",
		"  Core / Edge  ":   "core-edge",
		"already-a-slug":    "already-a-slug",
		"UPPER":             "upper",
		"a__b":              "a-b",
		"---":               "",
		"":                  "",
		"Site (New York) 2": "site-new-york-2",
	}
	for in, want := range cases {
		assert.Equal(t, want, crud.Slugify(in), "%q", in)
	}
}

func TestSlugify_Idempotent(t *testing.T) {
	for _, in := range []string{"Ashburn DC-1", "Core / Edge", "x"} {
		once := crud.Slugify(in)
		assert.Equal(t, once, crud.Slugify(once))
	}
}
