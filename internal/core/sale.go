package core

import "strings"

// Sale is one recorded apartment transaction.
type Sale struct {
	ID          string `json:"id,omitempty"`
	Nom         string `json:"nom"`
	Prenom      string `json:"prenom"`
	Telephone   string `json:"telephone"`
	DateAchat   string `json:"dateAchat"`
	Appartement string `json:"appartement"`
	Prix        Price  `json:"prix"`
}

// Column keys accepted by Sort and used as field names in validation errors.
const (
	ColumnNom         = "nom"
	ColumnPrenom      = "prenom"
	ColumnTelephone   = "telephone"
	ColumnDateAchat   = "dateAchat"
	ColumnAppartement = "appartement"
	ColumnPrix        = "prix"
)

// Columns lists the sale fields in canonical order.
var Columns = []string{
	ColumnNom,
	ColumnPrenom,
	ColumnTelephone,
	ColumnDateAchat,
	ColumnAppartement,
	ColumnPrix,
}

// Headers are the six column labels of the import/export file contract, in order.
var Headers = []string{"Nom", "Prénom", "Téléphone", "Date d'achat", "Appartement", "Prix"}

// Building returns the first "-" delimited segment of the unit code.
func (s Sale) Building() string {
	return BuildingOf(s.Appartement)
}

// UnitKey returns the normalized unit code used for uniqueness checks.
func (s Sale) UnitKey() string {
	return UnitKey(s.Appartement)
}

// Field returns the raw value of the named column, or "" for unknown columns.
func (s Sale) Field(column string) string {
	switch column {
	case ColumnNom:
		return s.Nom
	case ColumnPrenom:
		return s.Prenom
	case ColumnTelephone:
		return s.Telephone
	case ColumnDateAchat:
		return s.DateAchat
	case ColumnAppartement:
		return s.Appartement
	case ColumnPrix:
		return string(s.Prix)
	default:
		return ""
	}
}

// DisplayRow renders the sale the way it is shown and exported:
// date as DD/MM/YYYY and price as its human label.
func (s Sale) DisplayRow() []string {
	return []string{
		s.Nom,
		s.Prenom,
		s.Telephone,
		FormatDisplayDate(s.DateAchat),
		s.Appartement,
		s.Prix.Label(),
	}
}

// BuildingOf returns the building segment of a unit code.
func BuildingOf(appartement string) string {
	building, _, _ := strings.Cut(strings.TrimSpace(appartement), "-")
	return building
}

// UnitKey normalizes a unit code for comparison: trimmed and lowercased.
func UnitKey(appartement string) string {
	return strings.ToLower(strings.TrimSpace(appartement))
}
