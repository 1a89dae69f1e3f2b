package application

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/ventes/internal/config"
	"github.com/JonMunkholm/ventes/internal/core"
	"github.com/JonMunkholm/ventes/internal/exporter"
	"github.com/JonMunkholm/ventes/internal/importer"
	"github.com/JonMunkholm/ventes/internal/store"
)

var fixedNow = time.Date(2024, 1, 20, 10, 0, 0, 0, time.UTC)

func newService(t *testing.T) *Service {
	t.Helper()
	rs := store.NewRecordStore(store.NewMemoryBlobStore(), store.Options{})
	svc := NewService(rs, Options{
		MaxWait: 50 * time.Millisecond,
		Now:     func() time.Time { return fixedNow },
	})
	t.Cleanup(func() { svc.Close() })
	return svc
}

func input(unit string, prix core.Price) core.Sale {
	return core.Sale{
		Nom:         " Alaoui ",
		Prenom:      "Sara",
		Telephone:   "06 12 34 56 78",
		DateAchat:   "15/01/2024",
		Appartement: unit,
		Prix:        prix,
	}
}

func TestService_AddNormalizes(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	got, err := svc.Add(ctx, input("148-A-03-41", "121 800 DH"))
	require.NoError(t, err)

	assert.NotEmpty(t, got.ID)
	assert.Equal(t, "Alaoui", got.Nom)
	assert.Equal(t, "0612345678", got.Telephone)
	assert.Equal(t, "2024-01-15", got.DateAchat)
	assert.Equal(t, core.Price121800, got.Prix)

	stored, err := svc.Get(ctx, got.ID)
	require.NoError(t, err)
	assert.Equal(t, got, stored)
}

func TestService_AddRejectsInvalid(t *testing.T) {
	svc := newService(t)

	_, err := svc.Add(context.Background(), input("148-A-03-41", core.Price175000))

	var verrs core.ValidationErrors
	require.True(t, errors.As(err, &verrs), "error = %v", err)
	require.Len(t, verrs, 1)
	assert.Equal(t, core.ColumnAppartement, verrs[0].Field)
	assert.Equal(t, "VAL001", core.MapError(err).Code)

	all, err := svc.All(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestService_AddRejectsDuplicate(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	first, err := svc.Add(ctx, input("148-A-03-41", core.Price121800))
	require.NoError(t, err)

	_, err = svc.Add(ctx, input(" 148-a-03-41", core.Price121800))
	require.Error(t, err)
	// Lowercase door letter fails the grammar before uniqueness is checked.
	var verrs core.ValidationErrors
	assert.True(t, errors.As(err, &verrs))

	_, err = svc.Add(ctx, input("148-A-03-41 ", core.Price121800))
	var dup *core.DuplicateError
	require.True(t, errors.As(err, &dup), "error = %v", err)
	assert.Equal(t, first.ID, dup.ExistingID)
	assert.ErrorIs(t, err, core.ErrDuplicate)
}

func TestService_Update(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	a, err := svc.Add(ctx, input("148-A-03-41", core.Price121800))
	require.NoError(t, err)
	b, err := svc.Add(ctx, input("148-B-03-41", core.Price121800))
	require.NoError(t, err)

	t.Run("keeps own unit", func(t *testing.T) {
		edit := input("148-A-03-41", core.Price121800)
		edit.Prenom = "Salma"
		got, err := svc.Update(ctx, a.ID, edit)
		require.NoError(t, err)
		assert.Equal(t, a.ID, got.ID)
		assert.Equal(t, "Salma", got.Prenom)
	})

	t.Run("collides with another sale", func(t *testing.T) {
		_, err := svc.Update(ctx, a.ID, input("148-B-03-41", core.Price121800))
		var dup *core.DuplicateError
		require.True(t, errors.As(err, &dup), "error = %v", err)
		assert.Equal(t, b.ID, dup.ExistingID)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := svc.Update(ctx, "missing", input("148-C-03-41", core.Price121800))
		assert.ErrorIs(t, err, core.ErrNotFound)
	})

	t.Run("invalid", func(t *testing.T) {
		bad := input("148-C-03-41", core.Price121800)
		bad.DateAchat = "2024-02-01"
		_, err := svc.Update(ctx, a.ID, bad)
		var verrs core.ValidationErrors
		require.True(t, errors.As(err, &verrs), "error = %v", err)
		assert.Equal(t, "La date d'achat ne peut pas être dans le futur", verrs[0].Message)
	})
}

func TestService_DeleteAndClear(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	a, err := svc.Add(ctx, input("148-A-03-41", core.Price121800))
	require.NoError(t, err)
	_, err = svc.Add(ctx, input("148-03-42", core.Price175000))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, a.ID))
	assert.ErrorIs(t, svc.Delete(ctx, a.ID), core.ErrNotFound)

	n, err := svc.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	all, err := svc.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestService_WritesAreSerialized(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	require.NoError(t, svc.writes.Acquire(ctx))
	assert.True(t, svc.WritesBusy())

	_, err := svc.Add(ctx, input("148-A-03-41", core.Price121800))
	assert.ErrorIs(t, err, core.ErrBusy)
	assert.Equal(t, "REQ001", core.MapError(err).Code)

	svc.writes.Release()
	_, err = svc.Add(ctx, input("148-A-03-41", core.Price121800))
	assert.NoError(t, err)
}

func TestService_List(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	for _, s := range []core.Sale{
		input("148-A-03-41", core.Price121800),
		input("148-03-42", core.Price175000),
		input("201-02-07", core.Price155000),
	} {
		_, err := svc.Add(ctx, s)
		require.NoError(t, err)
	}

	view := core.NewViewState()
	view.SetFilters(core.Filters{Building: "148"})
	view.SetSort(core.ColumnPrix)
	view.SetSort(core.ColumnPrix)

	res, err := svc.List(ctx, view)
	require.NoError(t, err)

	require.Len(t, res.Items, 2)
	assert.Equal(t, core.Price175000, res.Items[0].Prix)
	assert.Equal(t, 3, res.StoreTotal)
	assert.Equal(t, 2, res.Total)
	assert.Equal(t, 1, res.ActiveFilters)
	assert.Equal(t, "2 sur 3 enregistrements", res.CountLabel)
	assert.Equal(t, "desc", res.Dir)

	st, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, core.Stats{Total: 3, ThisMonth: 3, ThisYear: 3, UniqueBuildings: 2}, st)

	b, err := svc.Buildings(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"148", "201"}, b)

	months, err := svc.SalesByMonth(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"2024-01": 3}, months)
}

const csvHeader = "Nom;Prénom;Téléphone;Date d'achat;Appartement;Prix\n"

func TestService_Import(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, input("305-04-11", core.Price175000))
	require.NoError(t, err)

	content := csvHeader +
		"Bennani;Omar;0622222222;2024-01-02;148-A-03-41;121800\n" +
		"Chraibi;Nadia;0633333333;2024-01-03;148-A-03-41;121800\n" +
		"Dahbi;Ali;0644444444;2024-01-04;305-04-11;175000\n"

	out, err := svc.Import(ctx, strings.NewReader(content), "ventes.csv")
	require.NoError(t, err)

	assert.Equal(t, 1, out.Imported)
	require.Len(t, out.Accepted, 1)
	assert.NotEmpty(t, out.Accepted[0].ID)
	assert.True(t, out.HasWarning)
	assert.Equal(t, "1 vente(s) importée(s) avec succès"+
		". 1 doublon(s) détecté(s) dans le fichier"+
		". 1 appartement(s) déjà existant(s) ignoré(s)", out.Message)

	all, err := svc.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestService_ImportNothing(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	content := csvHeader + "Bennani;Omar;12;2024-01-02;148-A-03-41;121800\n"
	out, err := svc.Import(ctx, strings.NewReader(content), "ventes.csv")

	assert.ErrorIs(t, err, core.ErrNothingToImport)
	assert.Equal(t, 1, out.Count(importer.KindValidation))
	assert.Zero(t, out.Imported)

	_, err = svc.Import(ctx, strings.NewReader("Nom,Prenom\n"), "ventes.csv")
	var fe *core.FormatError
	assert.True(t, errors.As(err, &fe), "error = %v", err)

	all, err := svc.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestService_Export(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	var buf bytes.Buffer
	_, err := svc.Export(ctx, &buf, ExportRequest{Format: exporter.FormatSpreadsheet})
	assert.ErrorIs(t, err, core.ErrNothingToExport)

	_, err = svc.Add(ctx, input("148-A-03-41", core.Price121800))
	require.NoError(t, err)
	_, err = svc.Add(ctx, input("201-02-07", core.Price155000))
	require.NoError(t, err)

	buf.Reset()
	name, err := svc.Export(ctx, &buf, ExportRequest{
		Format:  exporter.FormatPrint,
		Filters: core.Filters{Building: "201"},
	})
	require.NoError(t, err)
	assert.Equal(t, "ventes_appartements_2024-01-20.html", name)
	assert.Contains(t, buf.String(), "201-02-07")
	assert.NotContains(t, buf.String(), "148-A-03-41")
	assert.Contains(t, buf.String(), "Total : 1 vente(s)")

	buf.Reset()
	_, err = svc.Export(ctx, &buf, ExportRequest{
		Format:  exporter.FormatSpreadsheet,
		Filters: core.Filters{Building: "999"},
	})
	assert.ErrorIs(t, err, core.ErrNothingToExport, "a filter matching nothing exports nothing")
}

func TestNormalize(t *testing.T) {
	got := Normalize(core.Sale{
		ID:          "keep",
		Nom:         "  Nom ",
		Telephone:   "06 12 34 56 78",
		DateAchat:   "31-12-2023",
		Appartement: " 148-03-41 ",
		Prix:        "175 000 DH",
	})
	want := core.Sale{
		ID:          "keep",
		Nom:         "Nom",
		Telephone:   "0612345678",
		DateAchat:   "2023-12-31",
		Appartement: "148-03-41",
		Prix:        core.Price175000,
	}
	assert.Equal(t, want, got)
}

func TestOpen(t *testing.T) {
	for _, backend := range []string{config.BackendMemory, config.BackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			cfg := &config.Config{
				Store: config.StoreConfig{
					Backend:      backend,
					Key:          "ventes_test",
					MaxBlobBytes: 1 << 20,
					SQLitePath:   filepath.Join(t.TempDir(), "ventes.db"),
				},
				Upload: config.UploadConfig{MaxWaitTime: time.Second},
			}
			ctx := context.Background()

			svc, err := Open(ctx, cfg)
			require.NoError(t, err)
			defer svc.Close()

			_, err = svc.Add(ctx, input("148-A-03-41", core.Price121800))
			require.NoError(t, err)
			all, err := svc.All(ctx)
			require.NoError(t, err)
			assert.Len(t, all, 1)
		})
	}

	_, err := Open(context.Background(), &config.Config{Store: config.StoreConfig{Backend: "etcd"}})
	assert.ErrorContains(t, err, `unknown store backend "etcd"`)
}
