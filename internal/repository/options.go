package repository

import "strings"

type SortField string

const (
	SortByCreatedAt SortField = "createdAt"
	SortByHearts    SortField = "hearts"
)

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// HeartsFilter restricts a listing by whether a message has any hearts.
type HeartsFilter int

const (
	HeartsAny HeartsFilter = iota
	HeartsSome
	HeartsNone
)

// ListOptions controls filtering and ordering of a message listing.
// The zero value lists everything newest first.
type ListOptions struct {
	Hearts HeartsFilter
	Sort   SortField
	Order  SortOrder
}

// ParseListOptions builds ListOptions from raw query values. It never
// fails: an unknown sort field falls back to createdAt, an unknown order
// to desc, and any hasHearts value other than "true"/"false" means no
// filter.
func ParseListOptions(hasHearts, sort, order string) ListOptions {
	opts := ListOptions{Sort: SortByCreatedAt, Order: SortDesc}

	switch strings.ToLower(strings.TrimSpace(hasHearts)) {
	case "true":
		opts.Hearts = HeartsSome
	case "false":
		opts.Hearts = HeartsNone
	}

	if SortField(sort) == SortByHearts {
		opts.Sort = SortByHearts
	}
	if strings.EqualFold(order, string(SortAsc)) {
		opts.Order = SortAsc
	}
	return opts
}

// WithDefaults fills in zero-valued fields.
func (o ListOptions) WithDefaults() ListOptions {
	if o.Sort != SortByHearts {
		o.Sort = SortByCreatedAt
	}
	if o.Order != SortAsc {
		o.Order = SortDesc
	}
	return o
}
