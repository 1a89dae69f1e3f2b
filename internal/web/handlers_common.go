package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/JonMunkholm/ventes/internal/core"
)

const (
	// maxJSONBody caps sale payloads.
	maxJSONBody = 64 << 10

	// maxPageSize caps the pageSize query parameter.
	maxPageSize = 500
)

// parseIntParam parses a positive integer query parameter with a default value.
func parseIntParam(q url.Values, name string, defaultVal int) (int, error) {
	val := strings.TrimSpace(q.Get(name))
	if val == "" {
		return defaultVal, nil
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return 0, badRequest(name, "must be a positive integer")
	}
	return i, nil
}

// parseFilters reads search, building, dateFrom, dateTo and prix. Date bounds
// must parse and the price must be one of the tiers.
func parseFilters(q url.Values) (core.Filters, error) {
	f := core.Filters{
		Search:   q.Get("search"),
		Building: strings.TrimSpace(q.Get("building")),
		DateFrom: strings.TrimSpace(q.Get("dateFrom")),
		DateTo:   strings.TrimSpace(q.Get("dateTo")),
	}

	for _, bound := range []struct{ name, value string }{
		{"dateFrom", f.DateFrom},
		{"dateTo", f.DateTo},
	} {
		if bound.value == "" {
			continue
		}
		if _, ok := core.ParseDate(bound.value); !ok {
			return core.Filters{}, badRequest(bound.name, "unrecognized date "+strconv.Quote(bound.value))
		}
	}

	if raw := strings.TrimSpace(q.Get("prix")); raw != "" {
		p := core.ParsePriceLabel(raw)
		if !p.Known() {
			return core.Filters{}, badRequest("prix", "unknown price tier "+strconv.Quote(raw))
		}
		f.Prix = p
	}
	return f, nil
}

// parseSort reads sort and dir. An empty sort means insertion order.
func parseSort(q url.Values) (string, core.Direction, error) {
	col := strings.TrimSpace(q.Get("sort"))
	if col == "" {
		return "", core.Asc, nil
	}
	if !core.IsSortable(col) {
		return "", "", badRequest("sort", "unknown column "+strconv.Quote(col))
	}
	return col, core.ParseDirection(q.Get("dir")), nil
}

// parseView builds the list view from the query string.
func parseView(q url.Values) (core.ViewState, error) {
	view := core.NewViewState()

	filters, err := parseFilters(q)
	if err != nil {
		return view, err
	}
	view.SetFilters(filters)

	col, dir, err := parseSort(q)
	if err != nil {
		return view, err
	}
	view.SortColumn, view.SortDir = col, dir

	if view.Page, err = parseIntParam(q, "page", 1); err != nil {
		return view, err
	}
	if view.PageSize, err = parseIntParam(q, "pageSize", core.DefaultPageSize); err != nil {
		return view, err
	}
	view.PageSize = min(view.PageSize, maxPageSize)
	return view, nil
}

// decodeSale reads one JSON sale from the request body.
func decodeSale(w http.ResponseWriter, r *http.Request) (core.Sale, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)

	var sale core.Sale
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&sale); err != nil {
		if errors.Is(err, io.EOF) {
			return core.Sale{}, badRequest("body", "empty")
		}
		return core.Sale{}, badRequest("body", err.Error())
	}
	return sale, nil
}
