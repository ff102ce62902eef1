package importer

import (
	"reflect"
	"testing"
)

func Test_decodeSeed(t *testing.T) {
	yamlSeed := `
factions:
  - Autobot
  - Decepticon
companies:
  - name: Hasbro
    lines:
      - Generations
  - name: Takara Tomy
series:
  - Transformers
vendors:
  - HLJ
characters:
  - name: Optimus Prime
    faction: Autobot
    teams:
      - Wreckers
  - name: Soundwave
    faction: Decepticon
`

	tomlSeed := `
factions = ["Autobot", "Decepticon"]
series = ["Transformers"]
vendors = ["HLJ"]

[[companies]]
name = "Hasbro"
lines = ["Generations"]

[[companies]]
name = "Takara Tomy"

[[characters]]
name = "Optimus Prime"
faction = "Autobot"
teams = ["Wreckers"]

[[characters]]
name = "Soundwave"
faction = "Decepticon"
`

	want := &SeedFile{
		Factions: []string{"Autobot", "Decepticon"},
		Companies: []SeedCompany{
			{Name: "Hasbro", Lines: []string{"Generations"}},
			{Name: "Takara Tomy"},
		},
		Series:  []string{"Transformers"},
		Vendors: []string{"HLJ"},
		Characters: []SeedCharacter{
			{Name: "Optimus Prime", Faction: "Autobot", Teams: []string{"Wreckers"}},
			{Name: "Soundwave", Faction: "Decepticon"},
		},
	}

	tests := []struct {
		name    string
		path    string
		data    string
		want    *SeedFile
		wantErr bool
	}{
		{name: "YAML by extension", path: "seeds/seed.yaml", data: yamlSeed, want: want},
		{name: "YML alias", path: "seed.yml", data: yamlSeed, want: want},
		{name: "TOML by extension", path: "seed.toml", data: tomlSeed, want: want},
		{name: "Unsupported extension", path: "seed.json", data: "{}", wantErr: true},
		{name: "Malformed TOML", path: "seed.toml", data: "factions = [", wantErr: true},
		{name: "Malformed YAML", path: "seed.yaml", data: "factions: [\n  - x", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeSeed(tt.path, []byte(tt.data))
			if (err != nil) != tt.wantErr {
				t.Fatalf("decodeSeed() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("decodeSeed() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func Test_decodeSeed_empty_file(t *testing.T) {
	got, err := decodeSeed("seed.yaml", nil)
	if err != nil {
		t.Fatalf("decodeSeed() error = %v", err)
	}
	if !reflect.DeepEqual(got, &SeedFile{}) {
		t.Errorf("decodeSeed() = %+v, want empty seed", got)
	}
}

func Test_builtinSeed_is_well_formed(t *testing.T) {
	seed := builtinSeed()
	if len(seed.Factions) == 0 || len(seed.Companies) == 0 || len(seed.Types) == 0 {
		t.Errorf("builtinSeed() missing sections: %+v", seed)
	}
	for _, company := range seed.Companies {
		if company.Name == "" {
			t.Error("builtinSeed() company with empty name")
		}
	}
}
