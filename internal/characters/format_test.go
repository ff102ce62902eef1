package characters

import (
	"testing"

	"github.com/collectorsden/shelftrack/internal/database/models"
)

func Test_FormatLinks(t *testing.T) {
	tests := []struct {
		name  string
		links []*models.ItemCharacter
		want  string
	}{
		{
			name:  "No links",
			links: nil,
			want:  "",
		},
		{
			name: "Primary marker is explicit",
			links: []*models.ItemCharacter{
				{IsPrimary: true, Character: character(1, "Optimus Prime")},
				{Character: character(2, "Bumblebee")},
			},
			want: "Optimus Prime |primary, Bumblebee",
		},
		{
			name: "Role renders after the primary marker",
			links: []*models.ItemCharacter{
				{IsPrimary: true, Role: "rider |damaged", Character: character(3, "Soundwave")},
			},
			want: "Soundwave |primary |rider |damaged",
		},
		{
			name: "Links without a loaded character are skipped",
			links: []*models.ItemCharacter{
				{CharacterID: 4},
				{IsPrimary: true, Character: character(5, "Megatron")},
			},
			want: "Megatron |primary",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatLinks(tt.links); got != tt.want {
				t.Errorf("FormatLinks() = %v, want %v", got, tt.want)
			}
		})
	}
}

func Test_SortLinks(t *testing.T) {
	links := []*models.ItemCharacter{
		{Character: character(1, "ultra magnus")},
		{Character: character(2, "Arcee")},
		{IsPrimary: true, Character: character(3, "Rodimus")},
		{CharacterID: 4},
	}

	SortLinks(links)

	wantNames := []string{"Rodimus", "Arcee", "ultra magnus"}
	for i, want := range wantNames {
		if links[i].Character == nil || links[i].Character.Name != want {
			t.Fatalf("SortLinks() position %d = %+v, want %s", i, links[i], want)
		}
	}
	if links[3].Character != nil {
		t.Errorf("SortLinks() expected the characterless link last, got %+v", links[3])
	}
	if !links[0].IsPrimary {
		t.Errorf("SortLinks() expected the primary link first")
	}
}

func Test_PrimaryLink(t *testing.T) {
	tests := []struct {
		name  string
		links []*models.ItemCharacter
		want  int64
	}{
		{
			name: "Explicit primary",
			links: []*models.ItemCharacter{
				{CharacterID: 1},
				{CharacterID: 2, IsPrimary: true},
			},
			want: 2,
		},
		{
			name: "Falls back to the first link",
			links: []*models.ItemCharacter{
				{CharacterID: 1},
				{CharacterID: 2},
			},
			want: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PrimaryLink(tt.links)
			if got == nil || got.CharacterID != tt.want {
				t.Errorf("PrimaryLink() = %+v, want character %d", got, tt.want)
			}
		})
	}

	if got := PrimaryLink(nil); got != nil {
		t.Errorf("PrimaryLink(nil) = %+v, want nil", got)
	}
}

func Test_FormatLinks_round_trips_through_ParseList(t *testing.T) {
	links := []*models.ItemCharacter{
		{IsPrimary: true, Role: "rider", Character: character(1, "Soundwave")},
		{Character: character(2, "Bumblebee")},
	}

	entries := ParseList(FormatLinks(links))
	if len(entries) != 2 {
		t.Fatalf("ParseList() returned %d entries, want 2", len(entries))
	}
	if entries[0].Name != "Soundwave" || !entries[0].Primary || len(entries[0].Modifiers) != 1 || entries[0].Modifiers[0] != "rider" {
		t.Errorf("ParseList() first entry = %+v, want Soundwave |primary |rider", entries[0])
	}
	if entries[1].Name != "Bumblebee" || entries[1].Primary {
		t.Errorf("ParseList() second entry = %+v, want plain Bumblebee", entries[1])
	}
}
