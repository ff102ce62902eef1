package importer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/uptrace/bun"
	"gopkg.in/yaml.v3"

	"github.com/collectorsden/shelftrack/internal/database"
	"github.com/collectorsden/shelftrack/internal/database/dbutil"
	"github.com/collectorsden/shelftrack/internal/database/repositories"
	"github.com/collectorsden/shelftrack/internal/logger"
)

// SeedFile is the on-disk seed format, accepted as TOML or YAML.
type SeedFile struct {
	Factions   []string        `toml:"factions" yaml:"factions"`
	Companies  []SeedCompany   `toml:"companies" yaml:"companies"`
	Series     []string        `toml:"series" yaml:"series"`
	Types      []string        `toml:"types" yaml:"types"`
	Categories []string        `toml:"categories" yaml:"categories"`
	Vendors    []string        `toml:"vendors" yaml:"vendors"`
	Teams      []string        `toml:"teams" yaml:"teams"`
	Characters []SeedCharacter `toml:"characters" yaml:"characters"`
}

type SeedCompany struct {
	Name  string   `toml:"name" yaml:"name"`
	Lines []string `toml:"lines" yaml:"lines"`
}

type SeedCharacter struct {
	Name string `toml:"name" yaml:"name"`
	// Faction, when set, overwrites the character's current faction.
	Faction string `toml:"faction" yaml:"faction"`
	// Teams the character is rostered on.
	Teams []string `toml:"teams" yaml:"teams"`
}

// SeedResult counts the entries each section processed.
type SeedResult struct {
	Factions   int `json:"factions"`
	Companies  int `json:"companies"`
	Lines      int `json:"lines"`
	Series     int `json:"series"`
	Types      int `json:"types"`
	Categories int `json:"categories"`
	Vendors    int `json:"vendors"`
	Teams      int `json:"teams"`
	Characters int `json:"characters"`
}

// Seeder loads classification data. Every write is resolve-or-create,
// so reseeding the same file is harmless.
type Seeder struct {
	tm *dbutil.TransactionManager
}

func NewSeeder(db *database.DB) *Seeder {
	return &Seeder{tm: dbutil.NewTransactionManager(db.BunDB())}
}

// SeedPath seeds from a TOML or YAML file, chosen by extension.
func (s *Seeder) SeedPath(ctx context.Context, path string) (*SeedResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	seed, err := decodeSeed(path, data)
	if err != nil {
		return nil, err
	}
	return s.Seed(ctx, seed)
}

func decodeSeed(path string, data []byte) (*SeedFile, error) {
	var seed SeedFile
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if err := toml.Unmarshal(data, &seed); err != nil {
			return nil, fmt.Errorf("failed to parse TOML seed: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &seed); err != nil {
			return nil, fmt.Errorf("failed to parse YAML seed: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported seed format %q (want .toml, .yaml or .yml)", ext)
	}
	return &seed, nil
}

// SeedBuiltin loads the small default dataset shipped with the binary.
func (s *Seeder) SeedBuiltin(ctx context.Context) (*SeedResult, error) {
	return s.Seed(ctx, builtinSeed())
}

// Seed writes one seed file in a single transaction.
func (s *Seeder) Seed(ctx context.Context, seed *SeedFile) (*SeedResult, error) {
	result := &SeedResult{}
	err := s.tm.WithTransaction(ctx, dbutil.StandardTransactionOptions(), func(ctx context.Context, tx bun.Tx) error {
		return s.seedInTx(ctx, tx, seed, result)
	})
	if err != nil {
		return nil, err
	}

	logger.LogImport("Seed finished",
		"factions", result.Factions,
		"companies", result.Companies,
		"lines", result.Lines,
		"characters", result.Characters,
	)
	return result, nil
}

func (s *Seeder) seedInTx(ctx context.Context, tx bun.Tx, seed *SeedFile, result *SeedResult) error {
	factions := repositories.NewFactionRepository(tx)
	for _, name := range seed.Factions {
		if f, err := factions.GetOrCreate(ctx, name); err != nil {
			return fmt.Errorf("failed to seed faction %q: %w", name, err)
		} else if f != nil {
			result.Factions++
		}
	}

	companies := repositories.NewCompanyRepository(tx)
	lines := repositories.NewLineRepository(tx)
	for _, sc := range seed.Companies {
		company, err := companies.GetOrCreate(ctx, sc.Name)
		if err != nil {
			return fmt.Errorf("failed to seed company %q: %w", sc.Name, err)
		}
		if company == nil {
			continue
		}
		result.Companies++

		for _, lineName := range sc.Lines {
			line, err := lines.GetOrCreate(ctx, lineName)
			if err != nil {
				return fmt.Errorf("failed to seed line %q: %w", lineName, err)
			}
			if line == nil {
				continue
			}
			result.Lines++
			if line.CompanyID == nil {
				if err := lines.BackfillCompany(ctx, line.ID, company.ID); err != nil {
					return fmt.Errorf("failed to attach line %q to %q: %w", lineName, sc.Name, err)
				}
			}
		}
	}

	series := repositories.NewSeriesRepository(tx)
	for _, name := range seed.Series {
		if v, err := series.GetOrCreate(ctx, name); err != nil {
			return fmt.Errorf("failed to seed series %q: %w", name, err)
		} else if v != nil {
			result.Series++
		}
	}

	types := repositories.NewItemTypeRepository(tx)
	for _, name := range seed.Types {
		if v, err := types.GetOrCreate(ctx, name); err != nil {
			return fmt.Errorf("failed to seed type %q: %w", name, err)
		} else if v != nil {
			result.Types++
		}
	}

	categories := repositories.NewCategoryRepository(tx)
	for _, name := range seed.Categories {
		if v, err := categories.GetOrCreate(ctx, name); err != nil {
			return fmt.Errorf("failed to seed category %q: %w", name, err)
		} else if v != nil {
			result.Categories++
		}
	}

	vendors := repositories.NewVendorRepository(tx)
	for _, name := range seed.Vendors {
		if v, err := vendors.GetOrCreate(ctx, name); err != nil {
			return fmt.Errorf("failed to seed vendor %q: %w", name, err)
		} else if v != nil {
			result.Vendors++
		}
	}

	teams := repositories.NewTeamRepository(tx)
	for _, name := range seed.Teams {
		if v, err := teams.GetOrCreate(ctx, name); err != nil {
			return fmt.Errorf("failed to seed team %q: %w", name, err)
		} else if v != nil {
			result.Teams++
		}
	}

	characters := repositories.NewCharacterRepository(tx)
	for _, sc := range seed.Characters {
		character, err := characters.GetOrCreate(ctx, sc.Name)
		if err != nil {
			return fmt.Errorf("failed to seed character %q: %w", sc.Name, err)
		}
		if character == nil {
			continue
		}
		result.Characters++

		if faction := strings.TrimSpace(sc.Faction); faction != "" {
			f, err := factions.GetOrCreate(ctx, faction)
			if err != nil {
				return fmt.Errorf("failed to seed faction %q: %w", faction, err)
			}
			if err := characters.SetFaction(ctx, character.ID, f.ID); err != nil {
				return fmt.Errorf("failed to set faction of %q: %w", sc.Name, err)
			}
		}

		for _, teamName := range sc.Teams {
			team, err := teams.GetOrCreate(ctx, teamName)
			if err != nil {
				return fmt.Errorf("failed to seed team %q: %w", teamName, err)
			}
			if team == nil {
				continue
			}
			if err := teams.AddMember(ctx, team.ID, character.ID); err != nil {
				return fmt.Errorf("failed to roster %q on %q: %w", sc.Name, teamName, err)
			}
		}
	}

	return nil
}

// builtinSeed is a starter dataset for fresh databases.
func builtinSeed() *SeedFile {
	return &SeedFile{
		Factions: []string{"Autobot", "Decepticon"},
		Companies: []SeedCompany{
			{Name: "Hasbro", Lines: []string{"Generations", "Studio Series"}},
			{Name: "Takara Tomy", Lines: []string{"Masterpiece"}},
		},
		Types:      []string{"Action Figure", "Model Kit", "Statue"},
		Categories: []string{"Deluxe", "Voyager", "Leader"},
	}
}
