package service

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/camshop/backend/internal/model"
)

const (
	defaultPage      = 1
	defaultPageLimit = 100
	sortAscending    = "asc"
)

// ListResource enumerates, per resource, which field free-text search runs
// against and which fields may be sorted or filtered on. Unknown fields are
// rejected instead of passed through to the store.
type ListResource struct {
	SearchField      string
	DefaultSortField string
	SortFields       []string
	FilterFields     []string
	// BoolFields lists the filterable fields stored as booleans; their
	// filter values are coerced so equality matches the stored type.
	BoolFields []string
}

var UserListResource = ListResource{
	SearchField:      "name",
	DefaultSortField: "createdAt",
	SortFields:       []string{"name", "email", "createdAt", "updatedAt"},
	FilterFields:     []string{"name", "email", "roles", "active"},
	BoolFields:       []string{"active"},
}

// ComposeListQuery builds a ready-to-execute list query from the raw
// parameters. All parameters are optional and independent: page and limit fall
// back to their defaults when absent or non-numeric, limit is clamped to
// maxLimit, sort defaults to the resource's creation-time field descending.
func ComposeListQuery(params model.ListParams, res ListResource, maxLimit int64) (model.ListQuery, error) {
	page := parsePositive(params.Page, defaultPage)
	limit := parsePositive(params.Limit, defaultPageLimit)
	if limit > maxLimit {
		limit = maxLimit
	}

	q := model.ListQuery{
		Skip:      (page - 1) * limit,
		Limit:     limit,
		SortField: res.DefaultSortField,
		SortAsc:   false,
	}

	if params.Search != "" {
		q.SearchField = res.SearchField
		q.Search = params.Search
	}

	if params.Sort != "" {
		field, direction, err := splitPair(params.Sort, res.SortFields)
		if err != nil {
			return model.ListQuery{}, err
		}
		q.SortField = field
		q.SortAsc = direction == sortAscending
	}

	if params.Filter != "" {
		field, value, err := splitPair(params.Filter, res.FilterFields)
		if err != nil {
			return model.ListQuery{}, err
		}
		coerced, err := coerceFilterValue(field, value, res)
		if err != nil {
			return model.ListQuery{}, err
		}
		q.FilterField = field
		q.FilterValue = coerced
	}

	return q, nil
}

// coerceFilterValue converts the raw filter value to the field's stored type,
// so the store's equality match compares like with like.
func coerceFilterValue(field, value string, res ListResource) (any, error) {
	for _, f := range res.BoolFields {
		if f == field {
			parsed, err := strconv.ParseBool(value)
			if err != nil {
				return nil, fmt.Errorf("%w: field %q expects a boolean, got %q", ErrInvalidInput, field, value)
			}
			return parsed, nil
		}
	}
	return value, nil
}

func parsePositive(raw string, fallback int64) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// splitPair splits a "field:value" parameter once on ':' and validates the
// field against the resource's allow-list.
func splitPair(raw string, allowed []string) (string, string, error) {
	parts := strings.SplitN(raw, ":", 2)
	if len(parts) != 2 || parts[0] == "" {
		return "", "", fmt.Errorf("%w: expected field:value, got %q", ErrInvalidInput, raw)
	}

	field := parts[0]
	for _, f := range allowed {
		if f == field {
			return field, parts[1], nil
		}
	}
	return "", "", fmt.Errorf("%w: unknown field %q", ErrInvalidInput, field)
}
