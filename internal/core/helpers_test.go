package core

import (
	"errors"
	"testing"
)

func isDuplicate(err error) bool {
	var dup *DuplicateError
	return errors.Is(err, ErrDuplicate) && errors.As(err, &dup)
}

// =============================================================================
// Price tiers
// =============================================================================

func TestPrice_Projections(t *testing.T) {
	tests := []struct {
		price     Price
		label     string
		sortValue int
		known     bool
	}{
		{Price121800, "121 800 DH", 121800, true},
		{Price155000, "155 000 - 165 000 DH", 138500, true},
		{Price175000, "175 000 DH", 175000, true},
		{"999", "999", 0, false},
		{"", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.price), func(t *testing.T) {
			if got := tt.price.Label(); got != tt.label {
				t.Errorf("Label() = %q, want %q", got, tt.label)
			}
			if got := tt.price.SortValue(); got != tt.sortValue {
				t.Errorf("SortValue() = %d, want %d", got, tt.sortValue)
			}
			if got := tt.price.Known(); got != tt.known {
				t.Errorf("Known() = %v, want %v", got, tt.known)
			}
		})
	}
}

func TestParsePriceLabel(t *testing.T) {
	tests := []struct {
		input string
		want  Price
	}{
		{"121800", Price121800},
		{"121 800", Price121800},
		{"121 800 DH", Price121800},
		{"121\u00a0800\u00a0DH", Price121800},
		{"155000-16500", Price155000},
		{"155 000 - 165 000 DH", Price155000},
		{"138 500", Price155000},
		{"175000", Price175000},
		{" 175 000 DH ", Price175000},
		{"150000", "150000"},
		{"  ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParsePriceLabel(tt.input); got != tt.want {
				t.Errorf("ParsePriceLabel(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestPrices_AscendingBySortValue(t *testing.T) {
	prices := Prices()
	if len(prices) != 3 {
		t.Fatalf("len(Prices()) = %d, want 3", len(prices))
	}
	for i := 1; i < len(prices); i++ {
		if prices[i-1].SortValue() >= prices[i].SortValue() {
			t.Errorf("Prices() not ascending at %d: %v", i, prices)
		}
	}
}

// =============================================================================
// Sale helpers
// =============================================================================

func TestBuildingOf(t *testing.T) {
	tests := []struct {
		unit string
		want string
	}{
		{"148-A-03-41", "148"},
		{"201-02-07", "201"},
		{" 305-01-01 ", "305"},
		{"nodash", "nodash"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := BuildingOf(tt.unit); got != tt.want {
			t.Errorf("BuildingOf(%q) = %q, want %q", tt.unit, got, tt.want)
		}
	}
}

func TestSale_DisplayRow(t *testing.T) {
	s := Sale{
		Nom: "Alaoui", Prenom: "Sara", Telephone: "0612345678",
		DateAchat: "2024-01-05", Appartement: "148-A-03-41", Prix: Price155000,
	}
	want := []string{"Alaoui", "Sara", "0612345678", "05/01/2024", "148-A-03-41", "155 000 - 165 000 DH"}
	got := s.DisplayRow()
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("DisplayRow()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

// =============================================================================
// Error mapping
// =============================================================================

func TestMapError_DomainErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
	}{
		{"capacity", ErrCapacityExceeded, "STO001"},
		{"not found", ErrNotFound, "STO002"},
		{"validation", ValidationErrors{{Field: ColumnNom, Message: "Le nom est requis"}}, "VAL001"},
		{"duplicate", &DuplicateError{Appartement: "148-A-03-41", ExistingID: "x"}, "DUP001"},
		{"format", &FormatError{Reason: "header mismatch"}, "FILE002"},
		{"nothing to import", ErrNothingToImport, "FILE003"},
		{"nothing to export", ErrNothingToExport, "FILE005"},
		{"busy", ErrBusy, "REQ001"},
		{"unknown", errors.New("boom"), "ERR000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MapError(tt.err).Code; got != tt.code {
				t.Errorf("MapError(%v).Code = %q, want %q", tt.err, got, tt.code)
			}
		})
	}
}

func TestMapError_WrappedCapacity(t *testing.T) {
	err := errors.Join(errors.New("save sales"), ErrCapacityExceeded)
	if got := MapError(err).Code; got != "STO001" {
		t.Errorf("MapError().Code = %q, want STO001", got)
	}
	if !IsUserFacing(err) {
		t.Error("IsUserFacing() = false, want true")
	}
}

func TestNewUserError_Unwrap(t *testing.T) {
	ue := NewUserError(ErrNotFound)
	if !errors.Is(ue, ErrNotFound) {
		t.Error("UserError should unwrap to ErrNotFound")
	}
	if ue.Error() != "Vente non trouvée" {
		t.Errorf("Error() = %q", ue.Error())
	}
	if NewUserError(nil) != nil {
		t.Error("NewUserError(nil) should be nil")
	}
}
