package engagement

import (
	"strings"

	"go.einride.tech/aip/ordering"

	"github.com/vidtube/backend/internal/models"
)

// Order is a single sort key and direction.
type Order struct {
	Field models.SortField
	Desc  bool
}

// IsZero reports whether no order was requested.
func (o Order) IsZero() bool {
	return o.Field == ""
}

// DefaultOrder lists the newest videos first.
var DefaultOrder = Order{Field: models.SortCreatedAt, Desc: true}

var sortablePaths = []string{
	string(models.SortCreatedAt),
	string(models.SortViews),
	string(models.SortDuration),
	string(models.SortTitle),
}

// ParseOrder reads an AIP-132 order_by expression such as "views desc". Only
// one field may be given. An empty expression yields the zero Order.
func ParseOrder(orderBy string) (Order, error) {
	if strings.TrimSpace(orderBy) == "" {
		return Order{}, nil
	}

	var parsed ordering.OrderBy
	if err := parsed.UnmarshalString(orderBy); err != nil {
		return Order{}, invalidArgument("order_by %q: %v", orderBy, err)
	}
	if err := parsed.ValidateForPaths(sortablePaths...); err != nil {
		return Order{}, invalidArgument("order_by %q: %v", orderBy, err)
	}
	if len(parsed.Fields) != 1 {
		return Order{}, invalidArgument("order_by must name exactly one field, got %d", len(parsed.Fields))
	}

	field := parsed.Fields[0]
	return Order{Field: models.SortField(field.Path), Desc: field.Desc}, nil
}

// OrderFromParams accepts the sortBy/sortType pair used by older clients.
// sortType "asc" sorts ascending; any other value sorts descending.
func OrderFromParams(sortBy, sortType string) (Order, error) {
	sortBy = strings.TrimSpace(sortBy)
	if sortBy == "" {
		return Order{}, nil
	}

	switch sortBy {
	case "createdAt":
		sortBy = string(models.SortCreatedAt)
	}

	expr := sortBy
	if !strings.EqualFold(strings.TrimSpace(sortType), "asc") {
		expr += " desc"
	}
	return ParseOrder(expr)
}
