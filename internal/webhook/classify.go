package webhook

import "strconv"

// Classify determines the event kind and resolves the principal from a
// normalized payload. It is pure: the payload is never mutated, and
// the same input always yields the same output.
//
// Email resolution probes known locations in priority order: the
// nested contact object first, then the flat keys senders use when
// they flatten the contact with bracket syntax.
func Classify(p Payload) Classification {
	c := Classification{EventType: stringAt(p, "type")}
	if c.EventType == "" {
		c.EventType = EventUnknown
	}

	contact := mapAt(p, "contact")

	c.ContactEmail = firstNonEmpty(
		stringAt(contact, "email"),
		stringAt(p, "email"),
		stringAt(p, "contact_email"),
		stringAt(p, "contact[email]"),
	)
	c.ContactID = firstNonEmpty(
		stringAt(contact, "id"),
		stringAt(p, "contact_id"),
		stringAt(p, "contact[id]"),
	)
	return c
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// stringAt reads a field as a string. Numeric values are rendered
// without a decimal point when integral; ActiveCampaign sends contact
// ids as numbers in JSON and strings in form posts.
func stringAt(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	switch v := m[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return ""
	}
}

func mapAt(m map[string]any, key string) map[string]any {
	if m == nil {
		return nil
	}
	if nested, ok := m[key].(map[string]any); ok {
		return nested
	}
	return nil
}
