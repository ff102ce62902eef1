package services

import (
	"testing"
)

func testIndex() searchIndex {
	names := []struct {
		kind SearchKind
		id   int64
		name string
	}{
		{SearchKindItem, 1, "MP-44 Optimus Prime"},
		{SearchKindItem, 2, "Studio Series Bumblebee"},
		{SearchKindItem, 3, "Legacy Motormaster"},
		{SearchKindCharacter, 10, "Optimus Prime"},
		{SearchKindCharacter, 11, "Optimus Primal"},
		{SearchKindCharacter, 12, "Megatron"},
	}

	index := make(searchIndex, 0, len(names))
	for _, n := range names {
		index = append(index, searchEntry{
			kind:       n.kind,
			id:         n.id,
			name:       n.name,
			normalized: normalizeSearchTerm(n.name),
		})
	}
	return index
}

func Test_searchFrom(t *testing.T) {
	index := testIndex()

	t.Run("Matches across kinds", func(t *testing.T) {
		results := searchFrom(index, "optimus", 10)
		if len(results) != 3 {
			t.Fatalf("searchFrom() returned %d results, want 3", len(results))
		}
		kinds := map[SearchKind]bool{}
		for _, r := range results {
			kinds[r.Kind] = true
		}
		if !kinds[SearchKindItem] || !kinds[SearchKindCharacter] {
			t.Errorf("searchFrom() kinds = %v, want both item and character", kinds)
		}
	})

	t.Run("Best match ranks first", func(t *testing.T) {
		results := searchFrom(index, "megatron", 10)
		if len(results) == 0 || results[0].Name != "Megatron" {
			t.Errorf("searchFrom() = %v, want Megatron first", results)
		}
	})

	t.Run("Limit caps results", func(t *testing.T) {
		results := searchFrom(index, "optimus", 1)
		if len(results) != 1 {
			t.Errorf("searchFrom() returned %d results, want 1", len(results))
		}
	})

	t.Run("No match", func(t *testing.T) {
		if results := searchFrom(index, "zzzzqq", 10); len(results) != 0 {
			t.Errorf("searchFrom() = %v, want none", results)
		}
	})
}

func Test_normalizeSearchTerm(t *testing.T) {
	tests := []struct {
		name string
		term string
		want string
	}{
		{name: "Lowercases", term: "Optimus Prime", want: "optimus prime"},
		{name: "Maps separators", term: "studio_series-bumblebee", want: "studio series bumblebee"},
		{name: "Collapses whitespace", term: "  MP-44   Optimus ", want: "mp 44 optimus"},
		{name: "Empty", term: "   ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizeSearchTerm(tt.term); got != tt.want {
				t.Errorf("normalizeSearchTerm() = %v, want %v", got, tt.want)
			}
		})
	}
}
