package engagement

import (
	"math"
	"strconv"
	"strings"

	"github.com/vidtube/backend/internal/models"
)

// PageRequest selects a 1-based page. Zero values select the first page and
// the default page size.
type PageRequest struct {
	Page     int
	PageSize int
}

// Paging holds the page size bounds applied to every collection.
type Paging struct {
	DefaultPageSize int
	MaxPageSize     int
}

// DefaultPaging matches the configuration defaults.
var DefaultPaging = Paging{DefaultPageSize: 10, MaxPageSize: 100}

// Parse reads raw page and page size parameters. Empty values fall back to the
// defaults; anything that is not a positive integer is rejected.
func (p Paging) Parse(page, pageSize string) (PageRequest, error) {
	var req PageRequest
	var err error
	if req.Page, err = parsePositive("page", page); err != nil {
		return PageRequest{}, err
	}
	if req.PageSize, err = parsePositive("limit", pageSize); err != nil {
		return PageRequest{}, err
	}
	return p.normalize(req)
}

func parsePositive(field, raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, invalidArgument("%s must be a positive integer, got %q", field, raw)
	}
	return n, nil
}

func (p Paging) normalize(req PageRequest) (PageRequest, error) {
	if req.Page < 0 {
		return PageRequest{}, invalidArgument("page must be positive, got %d", req.Page)
	}
	if req.PageSize < 0 {
		return PageRequest{}, invalidArgument("limit must be positive, got %d", req.PageSize)
	}

	defaults := p
	if defaults.DefaultPageSize <= 0 {
		defaults.DefaultPageSize = DefaultPaging.DefaultPageSize
	}
	if defaults.MaxPageSize < defaults.DefaultPageSize {
		defaults.MaxPageSize = defaults.DefaultPageSize
	}

	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = defaults.DefaultPageSize
	}
	if req.PageSize > defaults.MaxPageSize {
		req.PageSize = defaults.MaxPageSize
	}
	return req, nil
}

// window converts a normalized request into a storage offset. Offsets that
// would overflow saturate, which selects nothing.
func (r PageRequest) window() models.Window {
	offset := math.MaxInt
	if r.Page-1 <= math.MaxInt/r.PageSize {
		offset = (r.Page - 1) * r.PageSize
	}
	return models.Window{Offset: offset, Limit: r.PageSize}
}

func newPage[T any](items []T, req PageRequest, total int64) models.Page[T] {
	if items == nil {
		items = []T{}
	}
	totalPages := 0
	if total > 0 {
		totalPages = int((total + int64(req.PageSize) - 1) / int64(req.PageSize))
	}
	return models.Page[T]{
		Items:      items,
		Page:       req.Page,
		PageSize:   req.PageSize,
		TotalItems: total,
		TotalPages: totalPages,
	}
}
