package main

import (
	"context"
	"io"

	"github.com/JonMunkholm/ventes/internal/application"
	"github.com/JonMunkholm/ventes/internal/client"
	"github.com/JonMunkholm/ventes/internal/core"
	"github.com/JonMunkholm/ventes/internal/exporter"
)

// backend is what the commands run against: the local store or a server.
type backend interface {
	List(ctx context.Context, q client.ListQuery) (application.ListResult, error)
	Create(ctx context.Context, sale core.Sale) (core.Sale, error)
	Delete(ctx context.Context, id string) error
	Clear(ctx context.Context) (int, error)
	Import(ctx context.Context, filename string, r io.Reader) (application.ImportOutcome, error)
	Export(ctx context.Context, w io.Writer, f exporter.Format, filters core.Filters) (string, error)
	Stats(ctx context.Context) (core.Stats, error)
	SalesByMonth(ctx context.Context) (map[string]int, error)
	Close() error
}

// remote talks to a running server.
type remote struct {
	*client.Client
}

func (remote) Close() error { return nil }

// local drives the service directly over the configured store.
type local struct {
	svc *application.Service
}

func (l local) List(ctx context.Context, q client.ListQuery) (application.ListResult, error) {
	view := core.NewViewState()
	view.SetFilters(q.Filters)
	if q.Sort != "" {
		view.SortColumn, view.SortDir = q.Sort, q.Dir
	}
	if q.Page > 0 {
		view.GoToPage(q.Page)
	}
	if q.PageSize > 0 {
		view.PageSize = q.PageSize
	}
	return l.svc.List(ctx, view)
}

func (l local) Create(ctx context.Context, sale core.Sale) (core.Sale, error) {
	return l.svc.Add(ctx, sale)
}

func (l local) Delete(ctx context.Context, id string) error {
	return l.svc.Delete(ctx, id)
}

func (l local) Clear(ctx context.Context) (int, error) {
	return l.svc.Clear(ctx)
}

func (l local) Import(ctx context.Context, filename string, r io.Reader) (application.ImportOutcome, error) {
	return l.svc.Import(ctx, r, filename)
}

func (l local) Export(ctx context.Context, w io.Writer, f exporter.Format, filters core.Filters) (string, error) {
	return l.svc.Export(ctx, w, application.ExportRequest{Format: f, Filters: filters})
}

func (l local) Stats(ctx context.Context) (core.Stats, error) {
	return l.svc.Stats(ctx)
}

func (l local) SalesByMonth(ctx context.Context) (map[string]int, error) {
	return l.svc.SalesByMonth(ctx)
}

func (l local) Close() error {
	return l.svc.Close()
}
