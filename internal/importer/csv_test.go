package importer

import (
	"context"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/collectorsden/shelftrack/internal/config"
)

func Test_mapHeader(t *testing.T) {
	tests := []struct {
		name   string
		header []string
		want   map[string]int
	}{
		{
			name:   "Canonical names map directly",
			header: []string{"Name", "Company", "Price"},
			want:   map[string]int{"name": 0, "company": 1, "price": 2},
		},
		{
			name:   "Aliases map when the canonical name is absent",
			header: []string{"Figure", "Manufacturer", "Paid"},
			want:   map[string]int{"name": 0, "company": 1, "price": 2},
		},
		{
			name:   "Earlier aliases outrank later ones",
			header: []string{"Character", "Name"},
			want:   map[string]int{"name": 1},
		},
		{
			name:   "Underscores and case fold into spaces",
			header: []string{"NAME", "Ship_Date", "order  number"},
			want:   map[string]int{"name": 0, "ship_date": 1, "order_number": 2},
		},
		{
			name:   "UTF-8 BOM on the first cell is ignored",
			header: []string{"\uFEFFname", "notes"},
			want:   map[string]int{"name": 0, "notes": 1},
		},
		{
			name:   "One column can feed several fields",
			header: []string{"name", "source"},
			want:   map[string]int{"name": 0, "series": 1, "vendor": 1},
		},
		{
			name:   "Character alias feeds the name field",
			header: []string{"character", "faction"},
			want:   map[string]int{"name": 0, "faction": 1},
		},
		{
			name:   "Repeated headers resolve to the first occurrence",
			header: []string{"name", "price", "price"},
			want:   map[string]int{"name": 0, "price": 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mapHeader(tt.header); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("mapHeader() = %v, want %v", got, tt.want)
			}
		})
	}
}

func Test_parseDate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"ISO", "2024-03-08", "2024-03-08"},
		{"US slashes", "3/8/2024", "2024-03-08"},
		{"US slashes padded", "03/08/2024", "2024-03-08"},
		{"US two-digit year", "3/8/24", "2024-03-08"},
		{"Year first slashes", "2024/3/8", "2024-03-08"},
		{"Day month-name year", "8-Mar-2024", "2024-03-08"},
		{"Garbage", "soon", ""},
		{"Empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseDate(tt.in)
			if tt.want == "" {
				if got != nil {
					t.Errorf("parseDate(%q) = %v, want nil", tt.in, got)
				}
				return
			}
			if got == nil || got.Format("2006-01-02") != tt.want {
				t.Errorf("parseDate(%q) = %v, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func Test_parseMoney(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want *float64
	}{
		{"Plain", "59.99", floatPtr(59.99)},
		{"Dollar sign", "$59.99", floatPtr(59.99)},
		{"Thousands separators", "$1,234.56", floatPtr(1234.56)},
		{"Pound sign", "£12", floatPtr(12)},
		{"Euro with space", "€ 10.50", floatPtr(10.50)},
		{"Zero", "0", floatPtr(0)},
		{"Empty", "", nil},
		{"Symbols only", "$", nil},
		{"Garbage", "call for price", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseMoney(tt.in)
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("parseMoney(%q) = %v, want %v", tt.in, got, tt.want)
			}
			if got != nil && *got != *tt.want {
				t.Errorf("parseMoney(%q) = %v, want %v", tt.in, *got, *tt.want)
			}
		})
	}
}

func Test_parseYear(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want *int
	}{
		{"Plain", "1984", intPtr(1984)},
		{"Empty", "", nil},
		{"Fractional", "1984.0", nil},
		{"Garbage", "vintage", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseYear(tt.in)
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("parseYear(%q) = %v, want %v", tt.in, got, tt.want)
			}
			if got != nil && *got != *tt.want {
				t.Errorf("parseYear(%q) = %d, want %d", tt.in, *got, *tt.want)
			}
		})
	}
}

func Test_buildInputs(t *testing.T) {
	header := []string{
		"name", "company", "line", "series", "type", "category",
		"sku", "version", "year", "condition", "status", "location",
		"characters", "faction", "notes",
		"vendor", "price", "tax", "shipping", "currency", "order", "order date", "purchase date", "ship date",
	}
	mapping := mapHeader(header)

	record := []string{
		"MP-44 Optimus Prime", "Takara Tomy", "Masterpiece", "Transformers", "Action Figure", "MP",
		"MP-44", "v3", "2019", "MISB", "owned", "Shelf A",
		"Optimus Prime |primary, Roller", "Autobot", "Grail piece",
		"HLJ", "$419.99", "", "¥0", "JPY", "HLJ-112", "", "2019-08-31", "9/15/2019",
	}

	input, purchase := buildInputs(newRow(record, mapping), "USD")

	if input.Name != "MP-44 Optimus Prime" || input.Company != "Takara Tomy" || input.Line != "Masterpiece" {
		t.Errorf("buildInputs() item = %+v", input)
	}
	if input.Status != "Owned" {
		t.Errorf("buildInputs() status = %q, want Owned", input.Status)
	}
	if input.Year == nil || *input.Year != 2019 {
		t.Errorf("buildInputs() year = %v, want 2019", input.Year)
	}
	if input.Characters == nil || *input.Characters != "Optimus Prime |primary, Roller" {
		t.Errorf("buildInputs() characters = %v", input.Characters)
	}
	if input.Faction != "Autobot" {
		t.Errorf("buildInputs() faction = %q, want Autobot", input.Faction)
	}

	if purchase == nil {
		t.Fatal("buildInputs() purchase = nil, want data")
	}
	if purchase.Vendor != "HLJ" || purchase.Currency != "JPY" || purchase.OrderNumber != "HLJ-112" {
		t.Errorf("buildInputs() purchase = %+v", purchase)
	}
	if purchase.Price == nil || *purchase.Price != 419.99 {
		t.Errorf("buildInputs() price = %v, want 419.99", purchase.Price)
	}
	if purchase.Shipping != nil {
		t.Errorf("buildInputs() shipping = %v, want nil for unstripped symbol", *purchase.Shipping)
	}
	wantDate := time.Date(2019, 8, 31, 0, 0, 0, 0, time.UTC)
	if purchase.OrderDate == nil || !purchase.OrderDate.Equal(wantDate) {
		t.Errorf("buildInputs() order date = %v, want fallback to purchase date %v", purchase.OrderDate, wantDate)
	}
	if purchase.PurchaseDate == nil || !purchase.PurchaseDate.Equal(wantDate) {
		t.Errorf("buildInputs() purchase date = %v, want %v", purchase.PurchaseDate, wantDate)
	}
	if purchase.ShipDate == nil || purchase.ShipDate.Month() != time.September {
		t.Errorf("buildInputs() ship date = %v, want September", purchase.ShipDate)
	}
}

func Test_buildInputs_no_purchase_data(t *testing.T) {
	mapping := mapHeader([]string{"name", "vendor", "price"})

	input, purchase := buildInputs(newRow([]string{"Grimlock", "", ""}, mapping), "USD")

	if input.Name != "Grimlock" {
		t.Errorf("buildInputs() name = %q", input.Name)
	}
	if purchase != nil {
		t.Errorf("buildInputs() purchase = %+v, want nil", purchase)
	}
}

func Test_buildInputs_default_currency(t *testing.T) {
	mapping := mapHeader([]string{"name", "price"})

	_, purchase := buildInputs(newRow([]string{"Grimlock", "24.99"}, mapping), "EUR")

	if purchase == nil || purchase.Currency != "EUR" {
		t.Errorf("buildInputs() purchase = %+v, want EUR default", purchase)
	}
}

func Test_buildInputs_missing_characters_column(t *testing.T) {
	mapping := mapHeader([]string{"name"})

	input, _ := buildInputs(newRow([]string{"Grimlock"}, mapping), "USD")

	if input.Characters != nil {
		t.Errorf("buildInputs() characters = %q, want nil when the column is absent", *input.Characters)
	}
}

func Test_Importer_ImportReader_dry_run(t *testing.T) {
	csvData := strings.Join([]string{
		"Name,Figure ID,Price,Characters",
		"MP-44 Optimus Prime,MP-44,$419.99,Optimus Prime |primary",
		",skipped,1.00,",
		"Grimlock,G-01,,Grimlock",
	}, "\n")

	imp := &Importer{cfg: config.Default()}
	got, err := imp.ImportReader(context.Background(), strings.NewReader(csvData), Options{DryRun: true})
	if err != nil {
		t.Fatalf("ImportReader() error = %v", err)
	}

	if got.BatchID == "" {
		t.Error("ImportReader() batch id is empty")
	}
	if got.RowsRead != 3 || got.ItemsCreated != 2 || got.PurchasesCreated != 1 || got.RowsSkipped != 1 {
		t.Errorf("ImportReader() = %+v, want rows 3, items 2, purchases 1, skipped 1", got)
	}
}

func Test_Importer_ImportReader_rejects_headerless_input(t *testing.T) {
	imp := &Importer{cfg: config.Default()}

	if _, err := imp.ImportReader(context.Background(), strings.NewReader(""), Options{DryRun: true}); err == nil {
		t.Error("ImportReader() expected error for empty input")
	}
	if _, err := imp.ImportReader(context.Background(), strings.NewReader("sku,price\nX,1"), Options{DryRun: true}); err == nil {
		t.Error("ImportReader() expected error when no name column maps")
	}
}

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }
