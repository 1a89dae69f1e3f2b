package core

// validation.go checks one sale against the field rules.
//
// Every rule is evaluated independently so a caller can show all problems at
// once. Single-field rules are validator tags; the unit-code grammar needs the
// price and "not in the future" needs the current date, so both run as a
// struct-level rule after the field tags.
//
// Uniqueness is not checked here. See CheckUnique.

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

// ValidationError represents a single validation error for a field.
type ValidationError struct {
	Field   string `json:"field"`   // Sale column key, e.g. "telephone"
	Value   string `json:"value"`   // The invalid value
	Message string `json:"message"` // Human-readable error message
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

var (
	phonePattern     = regexp.MustCompile(`^[0-9]{10}$`)
	doorUnitPattern  = regexp.MustCompile(`^\d{3}-[A-D]-\d{2}-\d{2}$`)
	plainUnitPattern = regexp.MustCompile(`^\d{3}-\d{2}-\d{2}$`)
)

// Validation tags; each field/tag pair maps to one message.
const (
	tagNotFuture = "notfuture"
	tagDoorUnit  = "doorunit"
	tagPlainUnit = "plainunit"
	tagAnyUnit   = "anyunit"
	tagPriceTier = "pricetier"
	tagPhone     = "phone10"
	tagCivilDate = "civildate"
	tagRequired  = "required"
)

var messages = map[string]string{
	ColumnNom + "." + tagRequired:          "Le nom est requis",
	ColumnPrenom + "." + tagRequired:       "Le prénom est requis",
	ColumnTelephone + "." + tagPhone:       "Le téléphone doit contenir exactement 10 chiffres",
	ColumnDateAchat + "." + tagRequired:    "La date d'achat est requise",
	ColumnDateAchat + "." + tagCivilDate:   "La date d'achat est invalide",
	ColumnDateAchat + "." + tagNotFuture:   "La date d'achat ne peut pas être dans le futur",
	ColumnAppartement + "." + tagRequired:  "L'appartement est requis",
	ColumnAppartement + "." + tagDoorUnit:  "Le format doit être XXX-A-XX-XX où A est la porte (A, B, C ou D). Ex: 148-A-03-41",
	ColumnAppartement + "." + tagPlainUnit: "Le format doit être XXX-XX-XX (ex: 148-03-41)",
	ColumnAppartement + "." + tagAnyUnit:   "Format invalide. Pour prix 121 800: XXX-A-XX-XX, sinon: XXX-XX-XX",
	ColumnPrix + "." + tagRequired:         "Le prix est requis",
	ColumnPrix + "." + tagPriceTier:        "Le prix est invalide (attendu: 121800, 155000-16500 ou 175000)",
}

// saleRules is the validated view of a Sale: text trimmed, phone without spaces.
type saleRules struct {
	Nom         string `json:"nom" validate:"required"`
	Prenom      string `json:"prenom" validate:"required"`
	Telephone   string `json:"telephone" validate:"phone10"`
	DateAchat   string `json:"dateAchat" validate:"required,civildate"`
	Appartement string `json:"appartement" validate:"required"`
	Prix        string `json:"prix" validate:"required"`

	today  time.Time
	strict bool
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func saleValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			return name
		})
		_ = v.RegisterValidation(tagPhone, func(fl validator.FieldLevel) bool {
			return phonePattern.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation(tagCivilDate, func(fl validator.FieldLevel) bool {
			_, ok := ParseDate(fl.Field().String())
			return ok
		})
		v.RegisterStructValidation(saleStructRules, saleRules{})
		validate = v
	})
	return validate
}

func saleStructRules(sl validator.StructLevel) {
	r := sl.Current().Interface().(saleRules)

	if d, ok := ParseDate(r.DateAchat); ok && d.After(CivilDate(r.today)) {
		sl.ReportError(r.DateAchat, ColumnDateAchat, "DateAchat", tagNotFuture, "")
	}

	if r.Appartement != "" {
		switch Price(r.Prix) {
		case Price121800:
			if !doorUnitPattern.MatchString(r.Appartement) {
				sl.ReportError(r.Appartement, ColumnAppartement, "Appartement", tagDoorUnit, "")
			}
		case Price155000, Price175000:
			if !plainUnitPattern.MatchString(r.Appartement) {
				sl.ReportError(r.Appartement, ColumnAppartement, "Appartement", tagPlainUnit, "")
			}
		default:
			if !doorUnitPattern.MatchString(r.Appartement) && !plainUnitPattern.MatchString(r.Appartement) {
				sl.ReportError(r.Appartement, ColumnAppartement, "Appartement", tagAnyUnit, "")
			}
		}
	}

	if r.strict && r.Prix != "" && !Price(r.Prix).Known() {
		sl.ReportError(r.Prix, ColumnPrix, "Prix", tagPriceTier, "")
	}
}

// Validate checks s against the field rules and returns every failure, ordered
// by column. A nil result means the sale is valid. today bounds the purchase date
// (inclusive); only its calendar day is used.
//
// A price outside the three tiers is tolerated here, with either unit-code
// grammar accepted, so a form can be checked before a tier is chosen.
func Validate(s Sale, today time.Time) ValidationErrors {
	return runValidation(s, today, false)
}

// ValidateStrict is Validate plus the requirement that the price is one of
// the three tiers. Used by the import pipeline and before anything is stored.
func ValidateStrict(s Sale, today time.Time) ValidationErrors {
	return runValidation(s, today, true)
}

func runValidation(s Sale, today time.Time, strict bool) ValidationErrors {
	rules := saleRules{
		Nom:         strings.TrimSpace(s.Nom),
		Prenom:      strings.TrimSpace(s.Prenom),
		Telephone:   StripSpaces(s.Telephone),
		DateAchat:   strings.TrimSpace(s.DateAchat),
		Appartement: strings.TrimSpace(s.Appartement),
		Prix:        strings.TrimSpace(string(s.Prix)),
		today:       today,
		strict:      strict,
	}

	err := saleValidator().Struct(rules)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return ValidationErrors{{Message: err.Error()}}
	}

	out := make(ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		field := fe.Field()
		msg, ok := messages[field+"."+fe.Tag()]
		if !ok {
			msg = fmt.Sprintf("%s est invalide", field)
		}
		out = append(out, ValidationError{
			Field:   field,
			Value:   fmt.Sprint(fe.Value()),
			Message: msg,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return columnIndex(out[i].Field) < columnIndex(out[j].Field)
	})
	return out
}

func columnIndex(field string) int {
	for i, c := range Columns {
		if c == field {
			return i
		}
	}
	return len(Columns)
}
