package postgres

import "time"

type leagueTableModel struct {
	ID       string    `db:"id"`
	Slug     string    `db:"slug"`
	Name     string    `db:"name"`
	Image    string    `db:"image"`
	Region   string    `db:"region"`
	Priority int       `db:"priority"`
	CachedAt time.Time `db:"cached_at"`
}
