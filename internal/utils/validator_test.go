package utils

import (
	"strings"
	"testing"
)

type sampleRequest struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
	Gender   string `validate:"omitempty,oneof=Male Female LGBT"`
}

func TestValidateStructValid(t *testing.T) {
	req := sampleRequest{Email: "a@x.com", Password: "secret1"}
	if msg := ValidateStruct(req); msg != "" {
		t.Fatalf("expected valid struct, got %q", msg)
	}
}

func TestValidateStructOptionalEnum(t *testing.T) {
	req := sampleRequest{Email: "a@x.com", Password: "secret1", Gender: "Female"}
	if msg := ValidateStruct(req); msg != "" {
		t.Fatalf("expected valid enum value, got %q", msg)
	}

	req.Gender = "Other"
	if msg := ValidateStruct(req); !strings.Contains(msg, "Gender") {
		t.Fatalf("expected Gender violation, got %q", msg)
	}
}

func TestValidateStructReportsFields(t *testing.T) {
	msg := ValidateStruct(sampleRequest{Email: "not-an-email", Password: "x"})
	if msg == "" {
		t.Fatal("expected validation failure")
	}
	if !strings.Contains(msg, "Email") || !strings.Contains(msg, "Password") {
		t.Fatalf("expected both fields in message, got %q", msg)
	}
}
