package core

// error_messages.go maps technical errors to coded user messages.
//
// # Error Codes Reference
//
// Codes are grouped by category. Users quote the code when reporting a
// problem; support looks it up here.
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL001 - Invalid fields: one or more fields failed validation
//	         Patterns: "validation failed"
//
// # Duplicate Errors (DUP001-DUP099)
//
//	DUP001 - Duplicate unit code: the apartment is already recorded
//	         Patterns: "duplicate unit code"
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large
//	          Patterns: "file too large"
//	FILE002 - Invalid format: bad header, no table, unreadable workbook
//	          Patterns: "invalid file format"
//	FILE003 - Nothing to import: no valid row in the file
//	          Patterns: "nothing to import"
//	FILE004 - No file: no file was selected
//	          Patterns: "no file provided"
//	FILE005 - Nothing to export
//	          Patterns: "nothing to export"
//	FILE006 - Unknown export format
//	          Patterns: "unknown export format"
//
// # Storage Errors (STO001-STO099)
//
//	STO001 - Storage full: the collection no longer fits
//	         Patterns: "storage capacity exceeded"
//	STO002 - Not found: no sale with this id
//	         Patterns: "sale not found"
//	STO003 - Storage unavailable
//	         Patterns: "connection refused", "connection reset"
//
// # Request Errors (REQ001-REQ099)
//
//	REQ001 - Busy: another write is in progress
//	         Patterns: "another write is in progress"
//	REQ002 - Timeout
//	         Patterns: "context deadline exceeded", "timeout"
//	REQ003 - Cancelled
//	         Patterns: "context canceled"
//	REQ004 - Bad request: malformed query parameter or body
//	         Patterns: "invalid request"
//	RATE001 - Rate limited
//	          Patterns: "rate limit"
//
// # Default Error (ERR000)
//
//	ERR000 - Unknown error. Check the logs for the technical error.
//
// Patterns are matched case-insensitively with strings.Contains; the first
// match wins, so specific patterns come before general ones.

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"` // What happened (user-friendly)
	Action  string `json:"action"`  // What to do about it
	Code    string `json:"code"`    // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// =========================================================================
	// Storage (STO001-STO003)
	// =========================================================================
	{
		pattern: "storage capacity exceeded",
		msg: UserMessage{
			Message: "L'espace de stockage est plein",
			Action:  "Veuillez exporter vos données et supprimer des enregistrements",
			Code:    "STO001",
		},
	},
	{
		pattern: "sale not found",
		msg: UserMessage{
			Message: "Vente non trouvée",
			Action:  "Actualisez la liste; la vente a peut-être été supprimée",
			Code:    "STO002",
		},
	},

	// =========================================================================
	// Business rules (VAL001, DUP001)
	// =========================================================================
	{
		pattern: "validation failed",
		msg: UserMessage{
			Message: "Certains champs sont invalides",
			Action:  "Corrigez les champs signalés puis réessayez",
			Code:    "VAL001",
		},
	},
	{
		pattern: "duplicate unit code",
		msg: UserMessage{
			Message: "Cet appartement existe déjà dans la base de données",
			Action:  "Vérifiez le code de l'appartement",
			Code:    "DUP001",
		},
	},

	// =========================================================================
	// Files (FILE001-FILE006)
	// =========================================================================
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "Le fichier dépasse la taille maximale autorisée",
			Action:  "Divisez le fichier en plusieurs parties",
			Code:    "FILE001",
		},
	},
	{
		pattern: "invalid file format",
		msg: UserMessage{
			Message: "Format de fichier invalide",
			Action:  "Les colonnes attendues sont: Nom, Prénom, Téléphone, Date d'achat, Appartement, Prix",
			Code:    "FILE002",
		},
	},
	{
		pattern: "nothing to import",
		msg: UserMessage{
			Message: "Aucune donnée valide à importer",
			Action:  "Consultez les erreurs ligne par ligne puis corrigez le fichier",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "Aucun fichier sélectionné",
			Action:  "Choisissez un fichier CSV, XLS ou XLSX",
			Code:    "FILE004",
		},
	},
	{
		pattern: "nothing to export",
		msg: UserMessage{
			Message: "Aucune donnée à exporter",
			Action:  "Ajoutez des ventes ou modifiez les filtres",
			Code:    "FILE005",
		},
	},
	{
		pattern: "unknown export format",
		msg: UserMessage{
			Message: "Format d'export inconnu",
			Action:  "Utilisez xls, xlsx ou print",
			Code:    "FILE006",
		},
	},

	// =========================================================================
	// Requests (REQ001-REQ004, RATE001)
	// =========================================================================
	{
		pattern: "another write is in progress",
		msg: UserMessage{
			Message: "Une autre opération est en cours",
			Action:  "Patientez un instant puis réessayez",
			Code:    "REQ001",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "La requête a expiré",
			Action:  "Réessayez avec un fichier plus petit",
			Code:    "REQ002",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "La requête a été annulée",
			Action:  "Veuillez réessayer",
			Code:    "REQ003",
		},
	},
	{
		pattern: "invalid request",
		msg: UserMessage{
			Message: "Paramètres de requête invalides",
			Action:  "Vérifiez les filtres, le tri et le corps de la requête",
			Code:    "REQ004",
		},
	},
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Trop de requêtes",
			Action:  "Patientez un instant avant de réessayer",
			Code:    "RATE001",
		},
	},

	// =========================================================================
	// Connectivity (STO003, REQ002)
	// =========================================================================
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Le stockage est indisponible",
			Action:  "Réessayez dans quelques instants",
			Code:    "STO003",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "La connexion au stockage a été interrompue",
			Action:  "Veuillez réessayer",
			Code:    "STO003",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "La requête a expiré",
			Action:  "Réessayez plus tard",
			Code:    "REQ002",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "Une erreur inattendue s'est produite",
	Action:  "Veuillez réessayer ou contacter le support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// If no pattern matches, the ERR000 fallback is returned.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern rather than the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError wraps a technical error with a user-friendly message.
// The original error is preserved for logging while providing a clean message for users.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps a technical error to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
