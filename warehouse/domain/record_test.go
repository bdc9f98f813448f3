package domain

import (
	"encoding/json"
	"testing"
)

func TestRecord_Location(t *testing.T) {
	cases := []struct {
		name   string
		fields map[string]any
		ok     bool
	}{
		{"numbers", map[string]any{"Latitude": 32.7, "Longitude": -96.8}, true},
		{"strings", map[string]any{"Latitude": "32.7", "Longitude": " -96.8 "}, true},
		{"json numbers", map[string]any{"Latitude": json.Number("32.7"), "Longitude": json.Number("-96.8")}, true},
		{"missing", map[string]any{"Latitude": 32.7}, false},
		{"zero", map[string]any{"Latitude": 0.0, "Longitude": -96.8}, false},
		{"garbage", map[string]any{"Latitude": "north", "Longitude": -96.8}, false},
	}
	for _, tc := range cases {
		_, ok := Record{Fields: tc.fields}.Location()
		if ok != tc.ok {
			t.Fatalf("%s: expected ok=%v, got %v", tc.name, tc.ok, ok)
		}
	}
}

func TestRecord_Text(t *testing.T) {
	r := Record{Fields: map[string]any{"WarehouseID": 1042.0, "Name": "Main", "Flag": true}}
	if got := r.Text("WarehouseID"); got != "1042" {
		t.Fatalf("expected 1042, got %q", got)
	}
	if got := r.Text("Name"); got != "Main" {
		t.Fatalf("expected Main, got %q", got)
	}
	if got := r.Text("Flag"); got != "true" {
		t.Fatalf("expected true, got %q", got)
	}
	if got := r.Text("Missing"); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
}
