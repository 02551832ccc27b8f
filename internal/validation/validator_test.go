// ThereIWas - Location Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thereiwas

package validation

import (
	"strings"
	"testing"
)

type testQuery struct {
	Device int64   `json:"device" validate:"required,gt=0"`
	Limit  int     `json:"limit" validate:"min=1,max=1000"`
	Name   string  `json:"name,omitempty" validate:"omitempty,max=5"`
	Lat    float64 `json:"lat" validate:"gte=-90,lte=90"`
}

func TestGetValidator_Singleton(t *testing.T) {
	if GetValidator() != GetValidator() {
		t.Error("GetValidator() should return the same singleton instance")
	}
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name      string
		input     testQuery
		wantField string
		wantMsg   string
	}{
		{"valid", testQuery{Device: 1, Limit: 10}, "", ""},
		{"missing device", testQuery{Limit: 10}, "device", "device is required"},
		{"limit too large", testQuery{Device: 1, Limit: 1001}, "limit", "limit must be at most 1000"},
		{"limit too small", testQuery{Device: 1, Limit: 0}, "limit", "limit must be at least 1"},
		{"name too long", testQuery{Device: 1, Limit: 1, Name: "abcdefg"}, "name", "name must be at most 5 characters"},
		{"latitude out of range", testQuery{Device: 1, Limit: 1, Lat: 91}, "lat", "lat must be less than or equal to 90"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&tt.input)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected validation error")
			}
			first := err.First()
			if first.Field() != tt.wantField {
				t.Errorf("Field() = %q, want %q", first.Field(), tt.wantField)
			}
			if first.Error() != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", first.Error(), tt.wantMsg)
			}
		})
	}
}

func TestRequestValidationError_MultipleFields(t *testing.T) {
	err := ValidateStruct(&testQuery{})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if len(err.Errors()) != 2 {
		t.Fatalf("expected 2 errors, got %d: %v", len(err.Errors()), err)
	}
	if !strings.Contains(err.Error(), "; ") {
		t.Errorf("combined message should join errors: %q", err.Error())
	}
}
