package core

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantMessage string
	}{
		{
			name:        "nil error returns empty",
			err:         nil,
			wantCode:    "",
			wantMessage: "",
		},
		{
			name:        "wrapped capacity error",
			err:         fmt.Errorf("save apartment_sales: %w", ErrCapacityExceeded),
			wantCode:    "STO001",
			wantMessage: "L'espace de stockage est plein",
		},
		{
			name:        "unknown id",
			err:         ErrNotFound,
			wantCode:    "STO002",
			wantMessage: "Vente non trouvée",
		},
		{
			name:        "validation errors",
			err:         ValidationErrors{{Field: ColumnTelephone, Message: "Le téléphone doit contenir exactement 10 chiffres"}},
			wantCode:    "VAL001",
			wantMessage: "Certains champs sont invalides",
		},
		{
			name:        "duplicate unit code",
			err:         &DuplicateError{Appartement: "148-A-03-41", ExistingID: "x"},
			wantCode:    "DUP001",
			wantMessage: "Cet appartement existe déjà dans la base de données",
		},
		{
			name:        "format error with cause",
			err:         &FormatError{Reason: "classeur illisible", Err: errors.New("zip: not a valid zip file")},
			wantCode:    "FILE002",
			wantMessage: "Format de fichier invalide",
		},
		{
			name:        "nothing to import",
			err:         ErrNothingToImport,
			wantCode:    "FILE003",
			wantMessage: "Aucune donnée valide à importer",
		},
		{
			name:        "nothing to export",
			err:         fmt.Errorf("export xls: %w", ErrNothingToExport),
			wantCode:    "FILE005",
			wantMessage: "Aucune donnée à exporter",
		},
		{
			name:        "busy",
			err:         ErrBusy,
			wantCode:    "REQ001",
			wantMessage: "Une autre opération est en cours",
		},
		{
			name:        "deadline",
			err:         context.DeadlineExceeded,
			wantCode:    "REQ002",
			wantMessage: "La requête a expiré",
		},
		{
			name:        "connection refused",
			err:         errors.New("dial tcp 127.0.0.1:6379: connect: connection refused"),
			wantCode:    "STO003",
			wantMessage: "Le stockage est indisponible",
		},
		{
			name:        "rate limit",
			err:         errors.New("rate limit exceeded"),
			wantCode:    "RATE001",
			wantMessage: "Trop de requêtes",
		},
		{
			name:        "unknown error returns default",
			err:         errors.New("some random internal error"),
			wantCode:    "ERR000",
			wantMessage: "Une erreur inattendue s'est produite",
		},
		{
			name:        "case insensitive matching",
			err:         errors.New("Storage Capacity Exceeded"),
			wantCode:    "STO001",
			wantMessage: "L'espace de stockage est plein",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.Message != tt.wantMessage {
				t.Errorf("MapError() message = %q, want %q", got.Message, tt.wantMessage)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	result := FormatUserError(ErrBusy)

	expected := "Une autre opération est en cours (Code: REQ001). Patientez un instant puis réessayez"
	if result != expected {
		t.Errorf("FormatUserError() = %q, want %q", result, expected)
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "nil error is not user facing",
			err:  nil,
			want: false,
		},
		{
			name: "known error is user facing",
			err:  ErrNothingToExport,
			want: true,
		},
		{
			name: "unknown error is not user facing",
			err:  errors.New("random internal error xyz"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsUserFacing(tt.err)
			if got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewUserError(t *testing.T) {
	t.Run("nil error returns nil", func(t *testing.T) {
		if got := NewUserError(nil); got != nil {
			t.Errorf("NewUserError(nil) = %v, want nil", got)
		}
	})

	t.Run("wraps technical error with user message", func(t *testing.T) {
		techErr := &DuplicateError{Appartement: "201-02-07", ExistingID: "abc"}
		userErr := NewUserError(techErr)

		if userErr.Error() != "Cet appartement existe déjà dans la base de données" {
			t.Errorf("Error() = %q, want user message", userErr.Error())
		}

		if !errors.Is(userErr, ErrDuplicate) {
			t.Error("Unwrap() should return original error")
		}
	})
}
