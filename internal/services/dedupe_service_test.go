package services

import (
	"testing"

	"github.com/collectorsden/shelftrack/internal/database/models"
)

func int64Ptr(v int64) *int64 { return &v }
func intPtr(v int) *int       { return &v }

func Test_itemSignature(t *testing.T) {
	base := func() *models.Item {
		return &models.Item{
			Name: "Optimus Prime", SKU: "F0701", Version: "Reissue",
			Year: intPtr(2023), Status: models.StatusOwned,
			CompanyID: int64Ptr(1), LineID: int64Ptr(2),
		}
	}

	t.Run("Identical items share a signature", func(t *testing.T) {
		if itemSignature(base()) != itemSignature(base()) {
			t.Errorf("itemSignature() differs for identical items")
		}
	})

	t.Run("Field changes split the signature", func(t *testing.T) {
		changed := []*models.Item{base(), base(), base(), base()}
		changed[0].Version = "First run"
		changed[1].Year = intPtr(2024)
		changed[2].Year = nil
		changed[3].CompanyID = int64Ptr(9)

		for i, item := range changed {
			if itemSignature(item) == itemSignature(base()) {
				t.Errorf("itemSignature() case %d should differ from the base", i)
			}
		}
	})
}

func Test_groupDuplicates(t *testing.T) {
	items := []*models.Item{
		{ID: 1, Name: "Optimus Prime", Status: models.StatusOwned},
		{ID: 5, Name: "Optimus Prime", Status: models.StatusOwned},
		{ID: 3, Name: "Optimus Prime", Status: models.StatusOwned},
		{ID: 2, Name: "Megatron", Status: models.StatusOwned},
		{ID: 4, Name: "Megatron", Status: models.StatusSold},
		{ID: 6, Name: "Rodimus", Status: models.StatusOwned},
		{ID: 7, Name: "Rodimus", Status: models.StatusOwned},
	}

	groups := groupDuplicates(items)

	if len(groups) != 2 {
		t.Fatalf("groupDuplicates() returned %d groups, want 2", len(groups))
	}

	first := groups[0]
	if len(first) != 3 || first[0].ID != 1 || first[1].ID != 3 || first[2].ID != 5 {
		t.Errorf("groupDuplicates() first group = %v, want ids 1,3,5", ids(first))
	}
	second := groups[1]
	if len(second) != 2 || second[0].ID != 6 {
		t.Errorf("groupDuplicates() second group = %v, want ids 6,7", ids(second))
	}
}

func Test_groupDuplicates_none(t *testing.T) {
	items := []*models.Item{
		{ID: 1, Name: "Optimus Prime"},
		{ID: 2, Name: "Megatron"},
	}
	if groups := groupDuplicates(items); len(groups) != 0 {
		t.Errorf("groupDuplicates() = %v, want none", groups)
	}
}

func ids(items []*models.Item) []int64 {
	out := make([]int64, len(items))
	for i, item := range items {
		out[i] = item.ID
	}
	return out
}
