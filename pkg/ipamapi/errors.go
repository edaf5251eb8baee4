package ipamapi

import (
	"encoding/json"
	"fmt"
	"strings"
)

// APIError carries the upstream HTTP status plus any per-field validation
// messages decoded from the response body.
type APIError struct {
	StatusCode int
	Detail     string
	Fields     map[string]string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("ipam api: %d: %s", e.StatusCode, e.Detail)
	}
	if len(e.Fields) > 0 {
		parts := make([]string, 0, len(e.Fields))
		for f, msg := range e.Fields {
			parts = append(parts, f+": "+msg)
		}
		return fmt.Sprintf("ipam api: %d: %s", e.StatusCode, strings.Join(parts, "; "))
	}
	return fmt.Sprintf("ipam api: %d", e.StatusCode)
}

// FieldErrors lets the form controller fold upstream validation messages
// into per-field errors.
func (e *APIError) FieldErrors() map[string]string {
	return e.Fields
}

// detailItem is one entry of the structured error body
// {"detail": [{"loc": ["body", "vid"], "msg": "..."}]}.
type detailItem struct {
	Loc []any  `json:"loc"`
	Msg string `json:"msg"`
}

// parseAPIError decodes both error shapes the API produces: a plain string
// detail and the structured list of located messages. The last string
// element of each loc path names the offending field.
func parseAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}

	var stringDetail struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &stringDetail); err == nil && stringDetail.Detail != "" {
		apiErr.Detail = stringDetail.Detail
		return apiErr
	}

	var listDetail struct {
		Detail []detailItem `json:"detail"`
	}
	if err := json.Unmarshal(body, &listDetail); err == nil && len(listDetail.Detail) > 0 {
		apiErr.Fields = make(map[string]string, len(listDetail.Detail))
		for _, item := range listDetail.Detail {
			field := locField(item.Loc)
			if field == "" {
				if apiErr.Detail == "" {
					apiErr.Detail = item.Msg
				}
				continue
			}
			apiErr.Fields[field] = item.Msg
		}
		return apiErr
	}

	if len(body) > 0 {
		apiErr.Detail = strings.TrimSpace(string(body))
	}
	return apiErr
}

// Location markers preceding the field name in a loc path.
var locMarkers = map[string]struct{}{
	"body": {}, "query": {}, "path": {}, "header": {},
}

func locField(loc []any) string {
	for i := len(loc) - 1; i >= 0; i-- {
		s, ok := loc[i].(string)
		if !ok || s == "" {
			continue
		}
		if _, marker := locMarkers[s]; marker {
			return ""
		}
		return s
	}
	return ""
}
