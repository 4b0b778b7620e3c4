package validation

import (
	"strings"
	"testing"

	"view-router/internal/common/errors"
)

func TestValidator_RequireString(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		field   string
		wantErr bool
	}{
		{"valid string", "hello", "name", false},
		{"empty string", "", "name", true},
		{"whitespace only", "   ", "name", true},
		{"valid with spaces", "hello world", "name", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewValidator()
			v.RequireString(tt.value, tt.field)

			if v.HasErrors() != tt.wantErr {
				t.Errorf("RequireString() hasError = %v, wantErr %v", v.HasErrors(), tt.wantErr)
			}
		})
	}
}

func TestValidator_RequirePositive(t *testing.T) {
	tests := []struct {
		name    string
		value   int
		wantErr bool
	}{
		{"positive value", 5, false},
		{"zero", 0, true},
		{"negative", -1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewValidator()
			v.RequirePositive(tt.value, "max_redirects")

			if v.HasErrors() != tt.wantErr {
				t.Errorf("RequirePositive() hasError = %v, wantErr %v", v.HasErrors(), tt.wantErr)
			}
		})
	}
}

func TestValidator_RequireOneOf(t *testing.T) {
	v := NewValidator()
	v.RequireOneOf("colon", []string{"slash", "colon"}, "dialect")
	if v.HasErrors() {
		t.Errorf("colon should be allowed")
	}

	v.RequireOneOf("tilde", []string{"slash", "colon"}, "dialect")
	if !v.HasErrors() {
		t.Fatal("tilde should be rejected")
	}
	if !strings.Contains(v.Error().Error(), "dialect must be one of: slash, colon") {
		t.Errorf("unexpected message %q", v.Error())
	}
}

func TestValidator_RequireRange(t *testing.T) {
	v := NewValidator()
	v.RequireRange(15, 0, 15, "redis_db")
	if v.HasErrors() {
		t.Errorf("15 should be in range")
	}
	v.RequireRange(16, 0, 15, "redis_db")
	if !v.HasErrors() {
		t.Errorf("16 should be out of range")
	}
}

func TestValidator_RequireRouteToken(t *testing.T) {
	tests := []struct {
		value   string
		wantErr bool
	}{
		{"/app/home", false},
		{"#!/app/users/42", false},
		{"/app/users;42", false},
		{"", true},
		{"/", true},
		{"/app//home", true},
	}

	for _, tt := range tests {
		v := NewValidator()
		v.RequireRouteToken(tt.value, "start_route")
		if v.HasErrors() != tt.wantErr {
			t.Errorf("RequireRouteToken(%q) hasError = %v, wantErr %v", tt.value, v.HasErrors(), tt.wantErr)
		}
	}
}

func TestValidator_WithPrefix(t *testing.T) {
	v := NewValidatorWithPrefix("config")
	v.RequireString("", "port")

	err := v.Error()
	if err == nil || !strings.Contains(err.Error(), "config: port is required") {
		t.Errorf("expected prefixed error, got %v", err)
	}
	if !errors.IsType(err, errors.ErrTypeValidation) {
		t.Errorf("expected validation error type, got %v", errors.GetType(err))
	}
}

func TestValidator_ValidateIf(t *testing.T) {
	v := NewValidator()

	v.ValidateIf(false, func() error {
		return strings.NewReader("").UnreadRune()
	})
	if v.HasErrors() {
		t.Error("Should not have errors when condition is false")
	}

	v.ValidateIf(true, func() error {
		return strings.NewReader("").UnreadRune()
	})
	if !v.HasErrors() {
		t.Error("Should have errors when condition is true and validation fails")
	}
}

func TestValidator_ClearAndMerge(t *testing.T) {
	v1 := NewValidator()
	v1.RequireString("", "name")

	v2 := NewValidator()
	v2.RequirePositive(0, "count")

	v1.Merge(v2)
	if len(v1.Errors()) != 2 {
		t.Errorf("After merge, expected 2 errors, got %d", len(v1.Errors()))
	}
	if !strings.Contains(v1.Error().Error(), "validation failed: ") {
		t.Errorf("expected combined message, got %q", v1.Error())
	}

	v1.Clear()
	if v1.HasErrors() {
		t.Error("Should not have errors after clear")
	}
}

type routeDoc struct {
	Pattern    string `yaml:"pattern" validate:"required,route_pattern"`
	Controller string `yaml:"controller" validate:"required,type_id"`
	Timeout    string `yaml:"timeout" validate:"omitempty,duration"`
}

func TestCentralizedValidator_ValidateStruct(t *testing.T) {
	cv := NewCentralizedValidator()

	if err := cv.ValidateStruct(routeDoc{Pattern: "/users/:id", Controller: "app.users.UserController", Timeout: "2s"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := cv.ValidateStruct(routeDoc{Pattern: "/users//x", Controller: "app..Users"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "routeDoc.pattern") || !strings.Contains(err.Error(), "routeDoc.controller") {
		t.Errorf("expected yaml field names, got %q", err)
	}

	result := cv.ValidateStructResult(routeDoc{Controller: "app.Users", Timeout: "soon"})
	if result.Valid || len(result.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %+v", result)
	}
	if result.Errors[0].Tag != "required" || result.Errors[1].Tag != "duration" {
		t.Errorf("unexpected tags %+v", result.Errors)
	}
}

func TestValidateVar(t *testing.T) {
	if err := ValidateVar("/app/home", "route_token"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateVar("/a/:", "route_pattern"); err == nil {
		t.Error("expected error for invalid placeholder")
	}
}
