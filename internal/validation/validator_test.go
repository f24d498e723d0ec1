// Happening - Local Event Aggregation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/happening

package validation

import (
	"strings"
	"testing"
)

func TestGetValidator_Singleton(t *testing.T) {
	v1 := GetValidator()
	v2 := GetValidator()

	if v1 != v2 {
		t.Error("GetValidator() should return the same singleton instance")
	}
	if v1 == nil {
		t.Error("GetValidator() should not return nil")
	}
}

type coordinatesStruct struct {
	Lat float64 `query:"lat" validate:"latitude"`
	Lng float64 `query:"lng" validate:"longitude"`
}

func TestCoordinateValidation(t *testing.T) {
	tests := []struct {
		name      string
		lat, lng  float64
		wantField string
	}{
		{"helsinki", 60.17, 24.94, ""},
		{"max lat", 90, 0, ""},
		{"min lng", 0, -180, ""},
		{"lat 999", 999, 24.94, "lat"},
		{"lat too low", -91, 0, "lat"},
		{"lng too high", 60.17, 181, "lng"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&coordinatesStruct{Lat: tt.lat, Lng: tt.lng})
			if tt.wantField == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected validation error")
			}
			if got := err.Errors()[0].Field(); got != tt.wantField {
				t.Errorf("Field() = %q, want %q", got, tt.wantField)
			}
			if !strings.HasPrefix(err.Error(), tt.wantField+" ") {
				t.Errorf("message %q should name the field %q", err.Error(), tt.wantField)
			}
		})
	}
}

type rangeStruct struct {
	RadiusKm float64 `query:"radiusKm" validate:"min=1,max=50"`
	Limit    int     `query:"limit" validate:"min=1,max=1000"`
	Width    int     `query:"maxWidth" validate:"min=1,max=1600"`
	Q        string  `query:"q" validate:"max=100,nonul"`
}

func TestRangeValidation(t *testing.T) {
	valid := rangeStruct{RadiusKm: 5, Limit: 200, Width: 800, Q: "jazz"}
	if err := ValidateStruct(&valid); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name    string
		mutate  func(*rangeStruct)
		wantMsg string
	}{
		{"radius too small", func(r *rangeStruct) { r.RadiusKm = 0.5 }, "radiusKm must be at least 1"},
		{"radius too large", func(r *rangeStruct) { r.RadiusKm = 51 }, "radiusKm must be at most 50"},
		{"limit zero", func(r *rangeStruct) { r.Limit = 0 }, "limit must be at least 1"},
		{"limit too large", func(r *rangeStruct) { r.Limit = 1001 }, "limit must be at most 1000"},
		{"photo too wide", func(r *rangeStruct) { r.Width = 1601 }, "maxWidth must be at most 1600"},
		{"query too long", func(r *rangeStruct) { r.Q = strings.Repeat("a", 101) }, "q must be at most 100 characters"},
		{"null byte", func(r *rangeStruct) { r.Q = "ja\x00zz" }, "q must not contain null bytes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid
			tt.mutate(&r)
			err := ValidateStruct(&r)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if err.Error() != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

type whitelistStruct struct {
	Category string `query:"category" validate:"omitempty,category"`
	Source   string `query:"source" validate:"omitempty,source"`
	Action   string `query:"action" validate:"omitempty,action"`
	ID       string `query:"id" validate:"omitempty,identifier"`
}

func TestWhitelistValidation(t *testing.T) {
	tests := []struct {
		name      string
		input     whitelistStruct
		wantField string
	}{
		{"empty is allowed", whitelistStruct{}, ""},
		{"all valid", whitelistStruct{Category: "music", Source: "linkedevents", Action: "like", ID: "helsinki_agg-123"}, ""},
		{"unknown category", whitelistStruct{Category: "opera"}, "category"},
		{"category case sensitive", whitelistStruct{Category: "Music"}, "category"},
		{"unknown source", whitelistStruct{Source: "eventbrite"}, "source"},
		{"unknown action", whitelistStruct{Action: "delete"}, "action"},
		{"identifier with space", whitelistStruct{ID: "a b"}, "id"},
		{"identifier with slash", whitelistStruct{ID: "../etc"}, "id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&tt.input)
			if tt.wantField == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected validation error")
			}
			if got := err.Errors()[0].Field(); got != tt.wantField {
				t.Errorf("Field() = %q, want %q", got, tt.wantField)
			}
		})
	}
}

func TestErrorMessagesDoNotEchoValues(t *testing.T) {
	input := whitelistStruct{Category: "<script>alert(1)</script>"}
	err := ValidateStruct(&input)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if strings.Contains(err.Error(), "script") {
		t.Errorf("message leaks the rejected value: %q", err.Error())
	}
	if resp := err.ToErrorResponse(); resp.Error != err.Error() {
		t.Errorf("ToErrorResponse().Error = %q", resp.Error)
	}
}

func TestMultipleErrorsJoined(t *testing.T) {
	err := ValidateStruct(&coordinatesStruct{Lat: 100, Lng: 200})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if len(err.Errors()) != 2 {
		t.Fatalf("len(Errors()) = %d, want 2", len(err.Errors()))
	}
	if !strings.Contains(err.Error(), "; ") {
		t.Errorf("expected joined message, got %q", err.Error())
	}
}

func TestIsIdentifier(t *testing.T) {
	for _, ok := range []string{"abc", "A-1_b", "123"} {
		if !IsIdentifier(ok) {
			t.Errorf("IsIdentifier(%q) = false", ok)
		}
	}
	for _, bad := range []string{"", "a b", "a.b", "ä", "a:b"} {
		if IsIdentifier(bad) {
			t.Errorf("IsIdentifier(%q) = true", bad)
		}
	}
}
