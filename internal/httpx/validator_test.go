package httpx

import (
	"strings"
	"testing"
)

type testPayload struct {
	Title  string `validate:"required,min=1,max=200"`
	ISBN   string `validate:"omitempty,isbn"`
	Price  string `validate:"required,money"`
	Status string `validate:"omitempty,oneof=AVAILABLE BORROWED"`
}

func TestValidateStruct_ValidInput(t *testing.T) {
	s := testPayload{
		Title:  "Go in Practice",
		ISBN:   "978-0-12-345678-9",
		Price:  "120000.50",
		Status: "AVAILABLE",
	}

	if errs := ValidateStruct(s); len(errs) != 0 {
		t.Errorf("Expected no validation errors, got %v", errs)
	}
}

func TestValidateStruct_RequiredFields(t *testing.T) {
	errs := ValidateStruct(testPayload{})
	if len(errs) == 0 {
		t.Fatal("Expected validation errors for required fields")
	}

	hasTitleError := false
	for _, e := range errs {
		if e.Field == "title" && strings.Contains(e.Message, "required") {
			hasTitleError = true
		}
	}
	if !hasTitleError {
		t.Errorf("Expected title required error, got %v", errs)
	}
}

func TestValidateStruct_ISBN(t *testing.T) {
	cases := map[string]bool{
		"0306406152":    true,
		"030640615X":    true,
		"9780306406157": true,
		"12345":         false,
		"abcdefghij":    false,
	}
	for isbn, ok := range cases {
		errs := ValidateStruct(testPayload{Title: "t", Price: "1", ISBN: isbn})
		if ok && len(errs) != 0 {
			t.Errorf("Expected %q to be valid, got %v", isbn, errs)
		}
		if !ok && len(errs) == 0 {
			t.Errorf("Expected %q to be invalid", isbn)
		}
	}
}

func TestValidateStruct_Money(t *testing.T) {
	if errs := ValidateStruct(testPayload{Title: "t", Price: "-5"}); len(errs) != 1 || errs[0].Field != "price" {
		t.Errorf("Expected negative price to fail, got %v", errs)
	}
	if errs := ValidateStruct(testPayload{Title: "t", Price: "ten"}); len(errs) != 1 {
		t.Errorf("Expected non-numeric price to fail, got %v", errs)
	}
}

func TestValidateStruct_OneOf(t *testing.T) {
	errs := ValidateStruct(testPayload{Title: "t", Price: "1", Status: "LOST"})
	if len(errs) != 1 || !strings.Contains(errs[0].Message, "one of") {
		t.Errorf("Expected oneof error, got %v", errs)
	}
}
