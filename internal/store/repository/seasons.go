package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/fortuna/rinkstats/internal/parser"
	"github.com/fortuna/rinkstats/internal/store"
)

// SeasonRepository handles season data access
type SeasonRepository struct {
	db *store.Database
}

// NewSeasonRepository creates a new season repository
func NewSeasonRepository(db *store.Database) *SeasonRepository {
	return &SeasonRepository{db: db}
}

var (
	standingsColumns = []string{
		"season_id", "position", "team_name", "points", "wins", "losses", "ties",
		"games_played", "otl", "goals_for", "goals_against", "goal_differential",
	}
	playerColumns = []string{
		"season_id", "position", "name", "number", "games_played", "goals", "assists",
		"points", "penalty_minutes",
	}
	goalieColumns = []string{
		"season_id", "position", "name", "number", "games_played", "wins", "losses",
		"ot_losses", "saves", "goals_against", "gaa", "save_percentage", "shutouts",
	}
)

// SaveAll stores every season in chronological order. It stops at the first
// failure.
func (r *SeasonRepository) SaveAll(ctx context.Context, seasons parser.Seasons) error {
	for _, label := range seasons.Labels() {
		if err := r.Save(ctx, seasons[label]); err != nil {
			return err
		}
	}
	return nil
}

// Save upserts one season and replaces its tables in a single transaction
func (r *SeasonRepository) Save(ctx context.Context, rec *parser.SeasonRecord) error {
	tx, err := r.db.DB().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO seasons (label, year, season, level)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (label) DO UPDATE SET
			year = EXCLUDED.year,
			season = EXCLUDED.season,
			level = EXCLUDED.level,
			updated_at = NOW()
		RETURNING season_id
	`

	var seasonID int
	err = tx.QueryRowContext(ctx, query, rec.Label, nullInt(rec.Year),
		nullString((*string)(rec.Season)), nullString((*string)(rec.Level))).Scan(&seasonID)
	if err != nil {
		return fmt.Errorf("upserting season %q: %w", rec.Label, err)
	}

	for _, table := range []string{"standings", "player_stats", "goalie_stats"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE season_id = $1", seasonID); err != nil {
			return fmt.Errorf("clearing %s for %q: %w", table, rec.Label, err)
		}
	}

	standings := make([][]any, len(rec.Standings))
	for i, s := range rec.Standings {
		standings[i] = []any{seasonID, i, s.TeamName, s.Points, s.Wins, s.Losses, s.Ties,
			s.GamesPlayed, s.OTL, s.GoalsFor, s.GoalsAgainst, s.GoalDifferential}
	}
	players := make([][]any, len(rec.Players))
	for i, p := range rec.Players {
		players[i] = []any{seasonID, i, p.Name, p.Number, p.GamesPlayed, p.Goals, p.Assists,
			p.Points, p.PenaltyMinutes}
	}
	goalies := make([][]any, len(rec.Goalies))
	for i, g := range rec.Goalies {
		goalies[i] = []any{seasonID, i, g.Name, g.Number, g.GamesPlayed, g.Wins, g.Losses,
			g.OTLosses, g.Saves, g.GoalsAgainst, float64(g.GAA), float64(g.SavePercentage), g.Shutouts}
	}

	if err := copyRows(ctx, tx, "standings", standingsColumns, standings); err != nil {
		return fmt.Errorf("copying standings for %q: %w", rec.Label, err)
	}
	if err := copyRows(ctx, tx, "player_stats", playerColumns, players); err != nil {
		return fmt.Errorf("copying player stats for %q: %w", rec.Label, err)
	}
	if err := copyRows(ctx, tx, "goalie_stats", goalieColumns, goalies); err != nil {
		return fmt.Errorf("copying goalie stats for %q: %w", rec.Label, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing season %q: %w", rec.Label, err)
	}
	return nil
}

// copyRows bulk-loads rows with COPY FROM STDIN
func copyRows(ctx context.Context, tx *sql.Tx, table string, columns []string, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn(table, columns...))
	if err != nil {
		return err
	}
	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			stmt.Close()
			return err
		}
	}
	if _, err := stmt.ExecContext(ctx); err != nil {
		stmt.Close()
		return err
	}
	return stmt.Close()
}

// GetByLabel loads a season and its tables by canonical label
func (r *SeasonRepository) GetByLabel(ctx context.Context, label string) (*parser.SeasonRecord, error) {
	query := `
		SELECT season_id, label, year, season, level
		FROM seasons
		WHERE label = $1
	`
	return r.load(ctx, query, label)
}

// Find loads the most recently updated season with the given year, season name and tier
func (r *SeasonRepository) Find(ctx context.Context, year int, season parser.SeasonName, level parser.LeagueTier) (*parser.SeasonRecord, error) {
	query := `
		SELECT season_id, label, year, season, level
		FROM seasons
		WHERE year = $1 AND season = $2 AND level = $3
		ORDER BY updated_at DESC
		LIMIT 1
	`
	return r.load(ctx, query, year, string(season), string(level))
}

func (r *SeasonRepository) load(ctx context.Context, query string, args ...any) (*parser.SeasonRecord, error) {
	var (
		seasonID int
		rec      parser.SeasonRecord
		year     sql.NullInt64
		season   sql.NullString
		level    sql.NullString
	)
	err := r.db.DB().QueryRowContext(ctx, query, args...).Scan(&seasonID, &rec.Label, &year, &season, &level)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrSeasonNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying season: %w", err)
	}
	applyMetadata(&rec, year, season, level)

	if rec.Standings, err = r.standings(ctx, seasonID); err != nil {
		return nil, err
	}
	if rec.Players, err = r.players(ctx, seasonID); err != nil {
		return nil, err
	}
	if rec.Goalies, err = r.goalies(ctx, seasonID); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *SeasonRepository) standings(ctx context.Context, seasonID int) ([]parser.StandingsRow, error) {
	rows, err := r.db.DB().QueryContext(ctx, `
		SELECT team_name, points, wins, losses, ties, games_played, otl,
			goals_for, goals_against, goal_differential
		FROM standings
		WHERE season_id = $1
		ORDER BY position
	`, seasonID)
	if err != nil {
		return nil, fmt.Errorf("querying standings: %w", err)
	}
	defer rows.Close()

	out := []parser.StandingsRow{}
	for rows.Next() {
		var s parser.StandingsRow
		if err := rows.Scan(&s.TeamName, &s.Points, &s.Wins, &s.Losses, &s.Ties, &s.GamesPlayed,
			&s.OTL, &s.GoalsFor, &s.GoalsAgainst, &s.GoalDifferential); err != nil {
			return nil, fmt.Errorf("scanning standings: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SeasonRepository) players(ctx context.Context, seasonID int) ([]parser.PlayerRow, error) {
	rows, err := r.db.DB().QueryContext(ctx, `
		SELECT name, number, games_played, goals, assists, points, penalty_minutes
		FROM player_stats
		WHERE season_id = $1
		ORDER BY position
	`, seasonID)
	if err != nil {
		return nil, fmt.Errorf("querying player stats: %w", err)
	}
	defer rows.Close()

	out := []parser.PlayerRow{}
	for rows.Next() {
		var p parser.PlayerRow
		if err := rows.Scan(&p.Name, &p.Number, &p.GamesPlayed, &p.Goals, &p.Assists,
			&p.Points, &p.PenaltyMinutes); err != nil {
			return nil, fmt.Errorf("scanning player stats: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *SeasonRepository) goalies(ctx context.Context, seasonID int) ([]parser.GoalieRow, error) {
	rows, err := r.db.DB().QueryContext(ctx, `
		SELECT name, number, games_played, wins, losses, ot_losses, saves,
			goals_against, gaa, save_percentage, shutouts
		FROM goalie_stats
		WHERE season_id = $1
		ORDER BY position
	`, seasonID)
	if err != nil {
		return nil, fmt.Errorf("querying goalie stats: %w", err)
	}
	defer rows.Close()

	out := []parser.GoalieRow{}
	for rows.Next() {
		var (
			g        parser.GoalieRow
			gaa, pct float64
		)
		if err := rows.Scan(&g.Name, &g.Number, &g.GamesPlayed, &g.Wins, &g.Losses, &g.OTLosses,
			&g.Saves, &g.GoalsAgainst, &gaa, &pct, &g.Shutouts); err != nil {
			return nil, fmt.Errorf("scanning goalie stats: %w", err)
		}
		g.GAA, g.SavePercentage = parser.Decimal(gaa), parser.Decimal(pct)
		out = append(out, g)
	}
	return out, rows.Err()
}

// List returns every stored season with row counts, oldest first
func (r *SeasonRepository) List(ctx context.Context) ([]*store.SeasonSummary, error) {
	query := `
		SELECT s.season_id, s.label, s.year, s.season, s.level,
			(SELECT COUNT(*) FROM standings WHERE season_id = s.season_id),
			(SELECT COUNT(*) FROM player_stats WHERE season_id = s.season_id),
			(SELECT COUNT(*) FROM goalie_stats WHERE season_id = s.season_id),
			s.created_at, s.updated_at
		FROM seasons s
		ORDER BY s.year NULLS FIRST, s.label
	`

	rows, err := r.db.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying seasons: %w", err)
	}
	defer rows.Close()

	var summaries []*store.SeasonSummary
	for rows.Next() {
		var (
			s      store.SeasonSummary
			rec    parser.SeasonRecord
			year   sql.NullInt64
			season sql.NullString
			level  sql.NullString
		)
		if err := rows.Scan(&s.SeasonID, &s.Label, &year, &season, &level,
			&s.TeamCount, &s.PlayerCount, &s.GoalieCount, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning season: %w", err)
		}
		applyMetadata(&rec, year, season, level)
		s.Year, s.Season, s.Level = rec.Year, rec.Season, rec.Level
		summaries = append(summaries, &s)
	}
	return summaries, rows.Err()
}

func applyMetadata(rec *parser.SeasonRecord, year sql.NullInt64, season, level sql.NullString) {
	if year.Valid {
		y := int(year.Int64)
		rec.Year = &y
	}
	if season.Valid {
		if s, ok := parser.ParseSeasonName(season.String); ok {
			rec.Season = &s
		}
	}
	if level.Valid {
		if l, ok := parser.ParseLeagueTier(level.String); ok {
			rec.Level = &l
		}
	}
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}
