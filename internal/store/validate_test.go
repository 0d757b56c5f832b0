package store

import (
	"errors"
	"testing"
)

type form struct {
	Name  string `json:"name" validate:"required"`
	Color string `json:"color" validate:"omitempty,rgbhex"`
	Links []link `json:"links" validate:"dive"`
}

type link struct {
	URL string `json:"url" validate:"required,url"`
}

func TestValidateReportsJSONFieldPaths(t *testing.T) {
	err := Validate(form{Color: "#12", Links: []link{{URL: "nope"}}})

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}
	for _, field := range []string{"name", "color", "links[0].url"} {
		if _, ok := verr.Fields[field]; !ok {
			t.Errorf("Expected error for %s, got %v", field, verr.Fields)
		}
	}
}

func TestHexColors(t *testing.T) {
	tests := []struct {
		color string
		ok    bool
	}{
		{"#fff", true},
		{"#6366f1", true},
		{"#6366F1", true},
		{"6366f1", false},
		{"#6366f", false},
		{"#ggg", false},
	}
	for _, tt := range tests {
		err := Validate(form{Name: "x", Color: tt.color})
		if (err == nil) != tt.ok {
			t.Errorf("color %q: expected ok=%v, got %v", tt.color, tt.ok, err)
		}
	}
}
