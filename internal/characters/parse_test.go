package characters

import (
	"reflect"
	"testing"
)

func Test_ParseList(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []Entry
	}{
		{
			name: "Empty input",
			raw:  "",
			want: nil,
		},
		{
			name: "Whitespace only",
			raw:  "   \n\t  ",
			want: nil,
		},
		{
			name: "Single name",
			raw:  "Optimus Prime",
			want: []Entry{
				{Name: "Optimus Prime"},
			},
		},
		{
			name: "Comma separated",
			raw:  "Optimus Prime, Megatron",
			want: []Entry{
				{Name: "Optimus Prime"},
				{Name: "Megatron"},
			},
		},
		{
			name: "Mixed separators",
			raw:  "Arcee; Ultra Magnus\nRodimus, Springer",
			want: []Entry{
				{Name: "Arcee"},
				{Name: "Ultra Magnus"},
				{Name: "Rodimus"},
				{Name: "Springer"},
			},
		},
		{
			name: "Primary modifier",
			raw:  "Optimus Prime |primary, Megatron",
			want: []Entry{
				{Name: "Optimus Prime", Primary: true},
				{Name: "Megatron"},
			},
		},
		{
			name: "Primary is case-insensitive",
			raw:  "Arcee | primary, Ultra Magnus | Primary ; Rodimus |   PRIMary",
			want: []Entry{
				{Name: "Arcee", Primary: true},
				{Name: "Ultra Magnus", Primary: true},
				{Name: "Rodimus", Primary: true},
			},
		},
		{
			name: "Custom modifiers are kept in order",
			raw:  "Soundwave | rider | damaged",
			want: []Entry{
				{Name: "Soundwave", Modifiers: []string{"rider", "damaged"}},
			},
		},
		{
			name: "Primary mixed with custom modifiers",
			raw:  "Soundwave | rider | primary | damaged",
			want: []Entry{
				{Name: "Soundwave", Modifiers: []string{"rider", "damaged"}, Primary: true},
			},
		},
		{
			name: "Trailing pipe yields no modifiers",
			raw:  "Optimus Prime |",
			want: []Entry{
				{Name: "Optimus Prime"},
			},
		},
		{
			name: "Empty modifier segments are skipped",
			raw:  "Optimus Prime | | primary |  ",
			want: []Entry{
				{Name: "Optimus Prime", Primary: true},
			},
		},
		{
			name: "Modifier without a name is dropped",
			raw:  "|primary, Megatron",
			want: []Entry{
				{Name: "Megatron"},
			},
		},
		{
			name: "Empty tokens between separators are skipped",
			raw:  "Optimus Prime,, ;\n, Megatron",
			want: []Entry{
				{Name: "Optimus Prime"},
				{Name: "Megatron"},
			},
		},
		{
			name: "Duplicate names are preserved at parse level",
			raw:  "Bumblebee, Bumblebee",
			want: []Entry{
				{Name: "Bumblebee"},
				{Name: "Bumblebee"},
			},
		},
		{
			name: "Names keep inner whitespace and case",
			raw:  "ultra magnus,  Hot   Rod ",
			want: []Entry{
				{Name: "ultra magnus"},
				{Name: "Hot   Rod"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseList(tt.raw)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseList() = %v, want %v", got, tt.want)
			}
		})
	}
}

func Test_Entry_String(t *testing.T) {
	tests := []struct {
		name  string
		entry Entry
		want  string
	}{
		{
			name:  "Plain name",
			entry: Entry{Name: "Optimus Prime"},
			want:  "Optimus Prime",
		},
		{
			name:  "Primary",
			entry: Entry{Name: "Optimus Prime", Primary: true},
			want:  "Optimus Prime |primary",
		},
		{
			name:  "Modifiers",
			entry: Entry{Name: "Soundwave", Modifiers: []string{"rider", "damaged"}},
			want:  "Soundwave |rider |damaged",
		},
		{
			name:  "Primary before modifiers",
			entry: Entry{Name: "Soundwave", Modifiers: []string{"rider"}, Primary: true},
			want:  "Soundwave |primary |rider",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.entry.String(); got != tt.want {
				t.Errorf("Entry.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func Test_Entry_String_round_trips(t *testing.T) {
	inputs := []string{
		"Optimus Prime |primary",
		"Soundwave |primary |rider |damaged",
		"Megatron",
	}

	for _, raw := range inputs {
		t.Run(raw, func(t *testing.T) {
			entries := ParseList(raw)
			if len(entries) != 1 {
				t.Fatalf("ParseList() returned %d entries, want 1", len(entries))
			}
			if got := entries[0].String(); got != raw {
				t.Errorf("Entry.String() = %v, want %v", got, raw)
			}
		})
	}
}
