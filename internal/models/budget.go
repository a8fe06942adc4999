package models

import "time"

// Budget is a monthly spending limit for one category. The (category,
// period) pair is the identity; setting it again replaces the limit.
type Budget struct {
	Category   string    `db:"category"`
	Period     Period    `db:"period"`
	LimitCents int64     `db:"limit_cents"`
	Version    int       `db:"version"`
	UpdatedAt  time.Time `db:"updated_at"`
}
