package webhook

import (
	"errors"
	"net/url"
	"testing"
)

func TestNormalize_JSONBody(t *testing.T) {
	p, err := Normalize([]byte(`{"type":"contact_add","contact":{"email":"new@ex.com"}}`), "application/json")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if p["type"] != "contact_add" {
		t.Fatalf("expected type preserved, got %v", p["type"])
	}
	contact, ok := p["contact"].(map[string]any)
	if !ok {
		t.Fatalf("expected nested contact map, got %T", p["contact"])
	}
	if contact["email"] != "new@ex.com" {
		t.Fatalf("unexpected email %v", contact["email"])
	}
}

func TestNormalize_EmptyBody(t *testing.T) {
	for _, ct := range []string{"application/json", "application/x-www-form-urlencoded", ""} {
		if _, err := Normalize(nil, ct); !errors.Is(err, ErrEmptyPayload) {
			t.Fatalf("content type %q: expected ErrEmptyPayload, got %v", ct, err)
		}
	}
}

func TestNormalize_MalformedJSON(t *testing.T) {
	if _, err := Normalize([]byte(`{"type":`), "application/json"); !errors.Is(err, ErrEmptyPayload) {
		t.Fatalf("expected ErrEmptyPayload for malformed json, got %v", err)
	}
}

func TestNormalize_FormWithEmbeddedJSON(t *testing.T) {
	form := url.Values{}
	form.Set("type", "contact_update")
	form.Set("contact", `{"email":"a@b.com","id":42}`)

	p, err := Normalize([]byte(form.Encode()), "application/x-www-form-urlencoded")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	contact, ok := p["contact"].(map[string]any)
	if !ok {
		t.Fatalf("expected embedded json decoded to map, got %T", p["contact"])
	}
	if contact["email"] != "a@b.com" {
		t.Fatalf("unexpected email %v", contact["email"])
	}
}

func TestNormalize_FormWithBrokenEmbeddedJSON(t *testing.T) {
	form := url.Values{}
	form.Set("contact", `{"email": "a@b.com"`) // missing closing brace
	form.Set("broken", `{not json}`)

	p, err := Normalize([]byte(form.Encode()), "application/x-www-form-urlencoded")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	// No closing brace: not object-like, kept raw.
	if p["contact"] != `{"email": "a@b.com"` {
		t.Fatalf("expected raw string kept, got %v", p["contact"])
	}
	// Object-like but invalid: decode fails, kept raw.
	if p["broken"] != `{not json}` {
		t.Fatalf("expected raw string kept, got %v", p["broken"])
	}
}

func TestNormalize_UnspecifiedContentTypePrefersJSON(t *testing.T) {
	p, err := Normalize([]byte(`{"type":"x"}`), "")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if p["type"] != "x" {
		t.Fatalf("expected json decode, got %v", p["type"])
	}
}

func TestNormalize_UnspecifiedContentTypeFallsBackToForm(t *testing.T) {
	p, err := Normalize([]byte("type=contact_add&contact%5Bemail%5D=a%40b.com"), "")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if p["type"] != "contact_add" {
		t.Fatalf("expected flat form value, got %v", p["type"])
	}
	if p["contact[email]"] != "a@b.com" {
		t.Fatalf("expected bracket key kept flat, got %v", p["contact[email]"])
	}
}
