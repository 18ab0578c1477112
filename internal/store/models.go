package store

import (
	"time"

	"github.com/fortuna/rinkstats/internal/parser"
)

// SeasonSummary is one stored season without its tables
type SeasonSummary struct {
	SeasonID    int                `json:"season_id" db:"season_id"`
	Label       string             `json:"label" db:"label"`
	Year        *int               `json:"year" db:"year"`
	Season      *parser.SeasonName `json:"season" db:"season"`
	Level       *parser.LeagueTier `json:"level" db:"level"`
	TeamCount   int                `json:"team_count" db:"-"`
	PlayerCount int                `json:"player_count" db:"-"`
	GoalieCount int                `json:"goalie_count" db:"-"`
	CreatedAt   time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at" db:"updated_at"`
}
