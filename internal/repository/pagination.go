package repository

import (
	"strings"

	"gorm.io/gorm"
)

func applyPage(query *gorm.DB, page, pageSize int) *gorm.DB {
	if pageSize <= 0 {
		return query
	}
	if page <= 0 {
		page = 1
	}
	return query.Offset((page - 1) * pageSize).Limit(pageSize)
}

// orderClause resolves a requested sort field against an allow-list of
// columns. Unknown fields fall back to the default column.
func orderClause(allowed map[string]string, field, direction, fallback string) string {
	column, ok := allowed[strings.ToLower(strings.TrimSpace(field))]
	if !ok {
		column = fallback
	}
	dir := "DESC"
	if strings.EqualFold(strings.TrimSpace(direction), "asc") {
		dir = "ASC"
	}
	return column + " " + dir
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// containsPattern builds a lowercase LIKE pattern matching term literally.
// Callers pair it with ESCAPE '\'.
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
}
