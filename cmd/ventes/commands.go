package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/ventes/internal/client"
	"github.com/JonMunkholm/ventes/internal/core"
	"github.com/JonMunkholm/ventes/internal/exporter"
)

// filterFlags binds the list filters shared by list and export.
type filterFlags struct {
	search, building, from, to, prix string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.search, "search", "", "Texte recherché dans nom, prénom, téléphone et appartement")
	cmd.Flags().StringVar(&f.building, "building", "", "Code du bâtiment, ex: 148")
	cmd.Flags().StringVar(&f.from, "from", "", "Date d'achat minimale (YYYY-MM-DD ou DD/MM/YYYY)")
	cmd.Flags().StringVar(&f.to, "to", "", "Date d'achat maximale")
	cmd.Flags().StringVar(&f.prix, "prix", "", "Tranche de prix: 121800, 155000-16500 ou 175000")
}

func (f *filterFlags) filters() (core.Filters, error) {
	out := core.Filters{
		Search:   f.search,
		Building: strings.TrimSpace(f.building),
		DateFrom: strings.TrimSpace(f.from),
		DateTo:   strings.TrimSpace(f.to),
	}
	for _, d := range []string{out.DateFrom, out.DateTo} {
		if d != "" {
			if _, ok := core.ParseDate(d); !ok {
				return core.Filters{}, usagef("date invalide %q", d)
			}
		}
	}
	if f.prix != "" {
		p := core.ParsePriceLabel(f.prix)
		if !p.Known() {
			return core.Filters{}, usagef("prix inconnu %q", f.prix)
		}
		out.Prix = p
	}
	return out, nil
}

// =============================================================================
// list
// =============================================================================

func newListCmd(opts *rootOptions) *cobra.Command {
	var (
		ff             filterFlags
		sortCol, dir   string
		page, pageSize int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Lister les ventes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filters, err := ff.filters()
			if err != nil {
				return err
			}
			if sortCol != "" && !core.IsSortable(sortCol) {
				return usagef("colonne de tri inconnue %q (attendu: %s)", sortCol, strings.Join(core.Columns, ", "))
			}

			res, err := opts.backend.List(cmd.Context(), client.ListQuery{
				Filters:  filters,
				Sort:     sortCol,
				Dir:      core.ParseDirection(dir),
				Page:     page,
				PageSize: pageSize,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\t"+strings.Join(core.Headers, "\t"))
			for _, s := range res.Items {
				fmt.Fprintln(tw, s.ID+"\t"+strings.Join(s.DisplayRow(), "\t"))
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(out, "%s - page %d/%d - %s\n", res.CountLabel, res.Page.Page, res.TotalPages, res.FilterLabel)
			return nil
		},
	}

	ff.register(cmd)
	cmd.Flags().StringVar(&sortCol, "sort", "", "Colonne de tri: "+strings.Join(core.Columns, ", "))
	cmd.Flags().StringVar(&dir, "dir", "asc", "Sens du tri: asc ou desc")
	cmd.Flags().IntVar(&page, "page", 1, "Numéro de page")
	cmd.Flags().IntVar(&pageSize, "page-size", core.DefaultPageSize, "Ventes par page")
	return cmd
}

// =============================================================================
// add / delete / clear
// =============================================================================

func newAddCmd(opts *rootOptions) *cobra.Command {
	var sale core.Sale
	var prix string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Ajouter une vente",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sale.Prix = core.ParsePriceLabel(prix)
			added, err := opts.backend.Create(cmd.Context(), sale)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Vente ajoutée: %s (%s)\n", added.Appartement, added.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&sale.Nom, "nom", "", "Nom du client")
	cmd.Flags().StringVar(&sale.Prenom, "prenom", "", "Prénom du client")
	cmd.Flags().StringVar(&sale.Telephone, "telephone", "", "Téléphone (10 chiffres)")
	cmd.Flags().StringVar(&sale.DateAchat, "date", "", "Date d'achat")
	cmd.Flags().StringVar(&sale.Appartement, "appartement", "", "Code appartement, ex: 148-A-03-41")
	cmd.Flags().StringVar(&prix, "prix", "", "Tranche de prix")
	for _, name := range []string{"nom", "prenom", "telephone", "date", "appartement", "prix"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func newDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID...",
		Short: "Supprimer des ventes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, id := range args {
				if err := opts.backend.Delete(cmd.Context(), id); err != nil {
					return fmt.Errorf("%s: %w", id, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Vente supprimée: %s\n", id)
			}
			return nil
		},
	}
}

func newClearCmd(opts *rootOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Supprimer toutes les ventes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return usagef("confirmez avec --yes")
			}
			n, err := opts.backend.Clear(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d vente(s) supprimée(s)\n", n)
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirmer la suppression")
	return cmd
}

// =============================================================================
// import / export
// =============================================================================

func newImportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Importer un fichier CSV, XLS ou XLSX",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			out, err := opts.backend.Import(cmd.Context(), filepath.Base(args[0]), f)

			w := cmd.OutOrStdout()
			if out.Message != "" {
				fmt.Fprintln(w, out.Message)
			}
			for _, msg := range out.Errors {
				fmt.Fprintln(w, "  - "+msg)
			}
			return err
		},
	}
}

func newExportCmd(opts *rootOptions) *cobra.Command {
	var (
		ff     filterFlags
		format string
		outArg string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Exporter les ventes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := exporter.ParseFormat(format)
			if err != nil {
				return usageError{err}
			}
			filters, err := ff.filters()
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			name, err := opts.backend.Export(cmd.Context(), &buf, f, filters)
			if err != nil {
				return err
			}

			path := outArg
			if path == "" {
				path = name
			} else if info, err := os.Stat(path); err == nil && info.IsDir() {
				path = filepath.Join(path, name)
			}
			if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Export écrit: %s\n", path)
			return nil
		},
	}

	ff.register(cmd)
	cmd.Flags().StringVar(&format, "format", "xls", "Format: xls, xlsx ou print")
	cmd.Flags().StringVarP(&outArg, "out", "o", "", "Fichier ou dossier de sortie (défaut: nom généré)")
	return cmd
}

// =============================================================================
// stats
// =============================================================================

func newStatsCmd(opts *rootOptions) *cobra.Command {
	var monthly bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Afficher les statistiques",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := opts.backend.Stats(cmd.Context())
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Total des ventes:   %d\n", st.Total)
			fmt.Fprintf(w, "Ventes ce mois:     %d\n", st.ThisMonth)
			fmt.Fprintf(w, "Ventes cette année: %d\n", st.ThisYear)
			fmt.Fprintf(w, "Bâtiments:          %d\n", st.UniqueBuildings)

			if !monthly {
				return nil
			}
			months, err := opts.backend.SalesByMonth(cmd.Context())
			if err != nil {
				return err
			}
			keys := make([]string, 0, len(months))
			for k := range months {
				keys = append(keys, k)
			}
			slices.Sort(keys)
			for _, k := range keys {
				fmt.Fprintf(w, "  %s  %d\n", k, months[k])
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&monthly, "monthly", false, "Détailler les ventes par mois")
	return cmd
}
