package models

import "testing"

func Test_ValidStatus(t *testing.T) {
	for _, status := range []string{StatusOwned, StatusPreorder, StatusSold, StatusWishlist} {
		if !ValidStatus(status) {
			t.Errorf("ValidStatus(%q) = false, want true", status)
		}
	}
	for _, status := range []string{"", "owned", "In Transit", "Lost"} {
		if ValidStatus(status) {
			t.Errorf("ValidStatus(%q) = true, want false", status)
		}
	}
}

func Test_CanonicalStatus(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"owned", StatusOwned},
		{"OWNED", StatusOwned},
		{" Owned ", StatusOwned},
		{"Preorder", StatusPreorder},
		{"pre-order", StatusPreorder},
		{"sold", StatusSold},
		{"wishlist", StatusWishlist},
		{"In Transit", "In Transit"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := CanonicalStatus(tt.in); got != tt.want {
			t.Errorf("CanonicalStatus(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func Test_Item_extra_markers(t *testing.T) {
	item := &Item{}
	if item.OwnerID() != "" || item.ImportBatch() != "" {
		t.Error("empty Extra should read as empty markers")
	}

	item.Extra = map[string]interface{}{
		ExtraOwnerID:     "kara",
		ExtraImportBatch: "b-123",
	}
	if item.OwnerID() != "kara" {
		t.Errorf("OwnerID() = %q, want kara", item.OwnerID())
	}
	if item.ImportBatch() != "b-123" {
		t.Errorf("ImportBatch() = %q, want b-123", item.ImportBatch())
	}

	item.Extra = map[string]interface{}{ExtraOwnerID: 42}
	if item.OwnerID() != "" {
		t.Errorf("OwnerID() = %q, want empty for non-string marker", item.OwnerID())
	}
}
