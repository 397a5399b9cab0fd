package webhook

import (
	"encoding/json"
	"errors"
	"net/url"
	"strings"
)

// ErrEmptyPayload signals that a request body yielded no decodable
// data under any supported encoding. The HTTP layer maps it to 400.
var ErrEmptyPayload = errors.New("webhook: no data in payload")

// Normalize turns a raw request body into the canonical Payload map.
//
// ActiveCampaign usually posts application/x-www-form-urlencoded, and
// sometimes embeds JSON objects inside individual form values. Some
// integrations post plain JSON instead. Content type decides:
//
//   - form: each value that looks like a JSON object ("{...}") gets a
//     structured decode; on failure the raw string is kept unchanged.
//   - json: the body is unmarshalled as-is.
//   - anything else: JSON is tried first, then the body is re-read as
//     a flat form mapping.
func Normalize(raw []byte, contentType string) (Payload, error) {
	var p Payload

	switch {
	case strings.Contains(contentType, "application/x-www-form-urlencoded"):
		p = fromForm(raw, true)
	case strings.Contains(contentType, "application/json"):
		p = fromJSON(raw)
	default:
		p = fromJSON(raw)
		if len(p) == 0 {
			p = fromForm(raw, false)
		}
	}

	if len(p) == 0 {
		return nil, ErrEmptyPayload
	}
	return p, nil
}

func fromJSON(raw []byte) Payload {
	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil
	}
	return p
}

// fromForm decodes a urlencoded body. With decodeNested set, values
// shaped like JSON objects are recursively decoded; otherwise the
// result is a flat string mapping.
func fromForm(raw []byte, decodeNested bool) Payload {
	vals, err := url.ParseQuery(string(raw))
	if err != nil || len(vals) == 0 {
		return nil
	}

	p := make(Payload, len(vals))
	for key, vv := range vals {
		v := ""
		if len(vv) > 0 {
			v = vv[0]
		}
		if decodeNested {
			p[key] = decodeFormValue(v)
		} else {
			p[key] = v
		}
	}
	return p
}

// decodeFormValue recovers JSON-in-form-field payloads. A value that
// does not parse stays a raw string; nothing escapes normalization.
func decodeFormValue(v string) any {
	trimmed := strings.TrimSpace(v)
	if strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}") {
		var nested map[string]any
		if err := json.Unmarshal([]byte(trimmed), &nested); err == nil {
			return nested
		}
	}
	return v
}
