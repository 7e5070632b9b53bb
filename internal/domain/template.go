package domain

import (
	"strings"
	"time"
)

// Template is a reusable message body (templates table).
type Template struct {
	ID        int64     `db:"id"`
	Title     string    `db:"title"`
	Body      string    `db:"body"`
	CreatedBy int64     `db:"created_by"` // owning user id
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// RenderPlaceholders replaces every {{key}} in body with data[key]. Unknown
// placeholders are left as-is.
func RenderPlaceholders(body string, data map[string]string) string {
	if len(data) == 0 {
		return body
	}
	pairs := make([]string, 0, len(data)*2)
	for k, v := range data {
		pairs = append(pairs, "{{"+k+"}}", v)
	}
	return strings.NewReplacer(pairs...).Replace(body)
}
