package models

import (
	"testing"
	"time"
)

func Test_ItemRequest_ToInput(t *testing.T) {
	characters := "Optimus Prime |primary, Roller"
	req := ItemRequest{
		Name:       "  MP-44 Optimus Prime ",
		Status:     "pre-order",
		Company:    "Takara Tomy",
		Line:       "Masterpiece",
		Characters: &characters,
		Faction:    "Autobot",
		Tags:       []string{"grail"},
		Owner:      "kara",
	}

	input := req.ToInput()

	if input.Name != "MP-44 Optimus Prime" {
		t.Errorf("ToInput() name = %q", input.Name)
	}
	if input.Status != "Preorder" {
		t.Errorf("ToInput() status = %q, want Preorder", input.Status)
	}
	if input.Characters == nil || *input.Characters != characters {
		t.Errorf("ToInput() characters = %v, want %q", input.Characters, characters)
	}
	if input.Faction != "Autobot" || input.Owner != "kara" {
		t.Errorf("ToInput() = %+v", input)
	}
}

func Test_ItemRequest_ToInput_absent_characters(t *testing.T) {
	input := (&ItemRequest{Name: "Grimlock"}).ToInput()
	if input.Characters != nil {
		t.Errorf("ToInput() characters = %v, want nil for an absent key", input.Characters)
	}
	if input.Tags != nil {
		t.Errorf("ToInput() tags = %v, want nil for an absent key", input.Tags)
	}
}

func Test_ItemRequest_ToInput_unusual_status_passes_through(t *testing.T) {
	input := (&ItemRequest{Name: "Grimlock", Status: "On Loan"}).ToInput()
	if input.Status != "On Loan" {
		t.Errorf("ToInput() status = %q, want verbatim passthrough", input.Status)
	}
}

func Test_PurchaseRequest_ToInput(t *testing.T) {
	req := PurchaseRequest{
		Vendor:       " HLJ ",
		PurchaseDate: "2019-08-31",
		ShipDate:     "2019-09-15",
		Currency:     "jpy",
	}

	input := req.ToInput()

	if input.Vendor != "HLJ" {
		t.Errorf("ToInput() vendor = %q", input.Vendor)
	}
	want := time.Date(2019, 8, 31, 0, 0, 0, 0, time.UTC)
	if input.PurchaseDate == nil || !input.PurchaseDate.Equal(want) {
		t.Errorf("ToInput() purchase date = %v, want %v", input.PurchaseDate, want)
	}
	if input.OrderDate == nil || !input.OrderDate.Equal(want) {
		t.Errorf("ToInput() order date = %v, want purchase-date fallback", input.OrderDate)
	}
	if input.Currency != "JPY" {
		t.Errorf("ToInput() currency = %q, want JPY", input.Currency)
	}
	if input.Quantity != 1 {
		t.Errorf("ToInput() quantity = %d, want default 1", input.Quantity)
	}
}

func Test_PurchaseRequest_ToInput_explicit_order_date(t *testing.T) {
	req := PurchaseRequest{
		OrderDate:    "2019-08-01",
		PurchaseDate: "2019-08-31",
		Quantity:     3,
	}

	input := req.ToInput()

	want := time.Date(2019, 8, 1, 0, 0, 0, 0, time.UTC)
	if input.OrderDate == nil || !input.OrderDate.Equal(want) {
		t.Errorf("ToInput() order date = %v, want %v", input.OrderDate, want)
	}
	if input.Quantity != 3 {
		t.Errorf("ToInput() quantity = %d, want 3", input.Quantity)
	}
}

func Test_ParseDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  *time.Time
	}{
		{"ISO date parses", "2019-08-31", timePtr(time.Date(2019, 8, 31, 0, 0, 0, 0, time.UTC))},
		{"Whitespace trims", " 2019-08-31 ", timePtr(time.Date(2019, 8, 31, 0, 0, 0, 0, time.UTC))},
		{"Empty is nil", "", nil},
		{"Slash format is nil", "8/31/2019", nil},
		{"Garbage is nil", "yesterday", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseDate(tt.input)
			switch {
			case (got == nil) != (tt.want == nil):
				t.Errorf("ParseDate(%q) = %v, want %v", tt.input, got, tt.want)
			case got != nil && !got.Equal(*tt.want):
				t.Errorf("ParseDate(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func timePtr(t time.Time) *time.Time { return &t }
