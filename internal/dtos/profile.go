// File: internal/dtos/profile.go
package dtos

import (
	"encoding/json"

	"github.com/iyunix/go-linksports/internal/domain"
)

// ProfileResponse flattens the base columns and the active variant's fields
// into one JSON object and adds completion_percentage.
func ProfileResponse(p *domain.Profile, completion int) (map[string]interface{}, error) {
	out := map[string]interface{}{}
	if err := mergeJSON(out, p); err != nil {
		return nil, err
	}
	if v := p.Variant(); v != nil {
		if err := mergeJSON(out, v); err != nil {
			return nil, err
		}
	}
	out["completion_percentage"] = completion
	return out, nil
}

func mergeJSON(dst map[string]interface{}, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return err
	}
	for k, val := range fields {
		dst[k] = val
	}
	return nil
}
