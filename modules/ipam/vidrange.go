package ipam

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// VLAN ids valid on the wire per 802.1Q.
const (
	MinVid = 1
	MaxVid = 4094
)

// VidRange is one inclusive id span of a VLAN group.
type VidRange struct {
	Start int64
	End   int64
}

func (r VidRange) Contains(vid int64) bool {
	return vid >= r.Start && vid <= r.End
}

// ParseVidRanges parses a group's range expression, a comma-separated list
// of "start-end" spans such as "100-199,300-399". A bare number is a
// single-id span. Spans must be ordered low to high internally and fall
// inside the 802.1Q id space.
func ParseVidRanges(expr string) ([]VidRange, error) {
	trimmed := strings.TrimSpace(expr)
	if trimmed == "" {
		return nil, errors.New("empty range expression")
	}
	var out []VidRange
	for _, token := range strings.Split(trimmed, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			return nil, errors.New("empty range token")
		}
		start, end, err := parseSpan(token)
		if err != nil {
			return nil, err
		}
		out = append(out, VidRange{Start: start, End: end})
	}
	return out, nil
}

func parseSpan(token string) (int64, int64, error) {
	var startStr, endStr string
	if i := strings.IndexByte(token, '-'); i >= 0 {
		startStr, endStr = strings.TrimSpace(token[:i]), strings.TrimSpace(token[i+1:])
	} else {
		startStr, endStr = token, token
	}
	start, err := strconv.ParseInt(startStr, 10, 64)
	if err != nil {
		return 0, 0, errors.Errorf("invalid range bound %q", startStr)
	}
	end, err := strconv.ParseInt(endStr, 10, 64)
	if err != nil {
		return 0, 0, errors.Errorf("invalid range bound %q", endStr)
	}
	if start > end {
		return 0, 0, errors.Errorf("range %q is reversed", token)
	}
	if start < MinVid || end > MaxVid {
		return 0, 0, errors.Errorf("range %q outside %d-%d", token, MinVid, MaxVid)
	}
	return start, end, nil
}

// VidInRanges reports whether the id falls inside any span of the
// expression. Unparseable expressions never match.
func VidInRanges(vid int64, expr string) bool {
	ranges, err := ParseVidRanges(expr)
	if err != nil {
		return false
	}
	for _, r := range ranges {
		if r.Contains(vid) {
			return true
		}
	}
	return false
}
