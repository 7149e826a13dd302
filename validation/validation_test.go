package validation

import (
	"strings"
	"testing"
)

func TestValidator_Required(t *testing.T) {
	v := New()
	v.Required("workspace", "team").Required("repo_slug", "  ")
	if !v.HasErrors() {
		t.Fatal("expected errors")
	}
	err := v.Error()
	if err == nil {
		t.Fatal("expected non-nil error")
	}
	if !strings.Contains(err.Error(), "repo_slug: is required") {
		t.Errorf("unexpected message: %s", err.Error())
	}
	if strings.Contains(err.Error(), "workspace") {
		t.Errorf("workspace should not be flagged: %s", err.Error())
	}
}

func TestValidator_NoErrors(t *testing.T) {
	v := New()
	v.Required("workspace", "team")
	if v.HasErrors() {
		t.Error("expected no errors")
	}
	if err := v.Error(); err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
}

func TestValidateStruct(t *testing.T) {
	type opts struct {
		Name    string `json:"name" validate:"required"`
		PageLen int    `json:"pagelen" validate:"omitempty,min=1,max=100"`
	}

	if err := ValidateStruct(opts{Name: "main", PageLen: 50}); err != nil {
		t.Errorf("expected valid, got %v", err)
	}

	err := ValidateStruct(opts{PageLen: 500})
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "name: is required") {
		t.Errorf("missing required message: %s", msg)
	}
	if !strings.Contains(msg, "pagelen: must be at most 100") {
		t.Errorf("missing max message: %s", msg)
	}
}

func TestToSnakeCase(t *testing.T) {
	tests := []struct{ in, want string }{
		{"PageLen", "page_len"},
		{"Name", "name"},
		{"TargetHash", "target_hash"},
	}
	for _, tc := range tests {
		if got := toSnakeCase(tc.in); got != tc.want {
			t.Errorf("toSnakeCase(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
