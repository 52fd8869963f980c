package models

import "time"

// RateWindow is one fixed-window counter. Stale windows self-heal: the
// counter resets when now - WindowStart exceeds the window length, so no
// cleanup pass is needed.
type RateWindow struct {
	Identifier  string    `db:"identifier"`
	WindowStart time.Time `db:"window_start"`
	Attempts    int64     `db:"attempts"`
}
