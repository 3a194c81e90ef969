package persistence

import (
	"strings"

	"gorm.io/gorm/clause"
)

// sortColumns maps the sort keys a listing accepts onto its table columns.
// Keys may be given as the column name or in camelCase.
type sortColumns struct {
	fallback string
	columns  map[string]string
}

func newSortColumns(fallback string, columns ...string) sortColumns {
	s := sortColumns{fallback: fallback, columns: make(map[string]string, 2*len(columns)+2)}
	for _, col := range append(columns, "id", fallback) {
		s.columns[col] = col
		s.columns[camelCase(col)] = col
	}
	return s
}

// order resolves key and dir into an ORDER BY on the current table. Unknown
// keys fall back to the default column, and anything but "asc" sorts
// descending. Rows with equal keys are ordered by id so pages do not overlap.
func (s sortColumns) order(key, dir string) clause.OrderBy {
	col, ok := s.columns[strings.TrimSpace(key)]
	if !ok {
		col = s.fallback
	}
	desc := !strings.EqualFold(strings.TrimSpace(dir), "asc")

	by := clause.OrderBy{Columns: []clause.OrderByColumn{
		{Column: clause.Column{Table: clause.CurrentTable, Name: col}, Desc: desc},
	}}
	if col != "id" {
		by.Columns = append(by.Columns, clause.OrderByColumn{
			Column: clause.Column{Table: clause.CurrentTable, Name: "id"},
			Desc:   desc,
		})
	}
	return by
}

func camelCase(col string) string {
	parts := strings.Split(col, "_")
	for i := 1; i < len(parts); i++ {
		if parts[i] != "" {
			parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
		}
	}
	return strings.Join(parts, "")
}

var (
	groupSort = newSortColumns("created_at",
		"updated_at", "name", "status", "total_goal", "current_amount", "progress_percentage", "goal_deadline")

	goalSort = newSortColumns("created_at",
		"updated_at", "title", "status", "priority", "target_amount", "current_amount", "progress_percentage", "target_date")

	contributionSort = newSortColumns("contribution_date",
		"created_at", "updated_at", "amount", "status", "points_earned")
)
