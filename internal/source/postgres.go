package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"glicks/internal/config"
	"glicks/internal/domain"
)

// Compile-time interface check.
var _ Provider = (*PostgresProvider)(nil)

// PostgresProvider queries the picks and results tables directly.
type PostgresProvider struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

// Connect creates a connection pool and verifies it with a ping.
func Connect(ctx context.Context, cfg config.PostgresSource) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	if cfg.MinConns > 0 {
		poolCfg.MinConns = int32(cfg.MinConns)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxConns)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// NewPostgresProvider wraps an open pool.
func NewPostgresProvider(pool *pgxpool.Pool, log *slog.Logger) *PostgresProvider {
	return &PostgresProvider{pool: pool, log: log}
}

// Close closes the pool.
func (p *PostgresProvider) Close() {
	p.pool.Close()
}

const pickColumns = `date::text, player, coalesce(player_id::text, ''), coalesce(player_team, ''),
	coalesce(team, ''), coalesce(opponent, ''), coalesce(home_team, ''), coalesce(away_team, ''),
	market, coalesce(category, ''), direction, line, stars, coalesce(best_book, ''), best_price,
	coalesce(game_pk::text, ''), coalesce(game_time, ''), coalesce(result, ''), actual, pnl`

func scanPick(row pgx.CollectableRow) (domain.Pick, error) {
	var (
		p                 domain.Pick
		playerID, gamePK  string
		direction, result string
	)
	err := row.Scan(&p.Date, &p.Player, &playerID, &p.PlayerTeam,
		&p.Team, &p.Opponent, &p.HomeTeam, &p.AwayTeam,
		&p.Market, &p.Category, &direction, &p.Line, &p.Stars, &p.BestBook, &p.BestPrice,
		&gamePK, &p.GameTime, &result, &p.Actual, &p.PnL)
	p.PlayerID = domain.ID(playerID)
	p.GamePK = domain.ID(gamePK)
	p.Direction = domain.Direction(direction)
	p.Result = domain.ParseResult(result)
	return p, err
}

func (p *PostgresProvider) DateIndex(ctx context.Context, vc domain.ViewContext) (*domain.DateIndexPayload, error) {
	season, err := seasonFilter(vc)
	if err != nil {
		return nil, err
	}
	rows, err := p.pool.Query(ctx,
		`SELECT date::text, count(*) FROM picks WHERE season = $1 GROUP BY date ORDER BY date`, season)
	if err != nil {
		return nil, fmt.Errorf("picks index %d: %w", season, err)
	}
	dates, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.DateCount, error) {
		var d domain.DateCount
		var n int64
		err := row.Scan(&d.Date, &n)
		d.Count = domain.Count(n)
		return d, err
	})
	if err != nil {
		return nil, fmt.Errorf("picks index %d: %w", season, err)
	}
	return &domain.DateIndexPayload{Dates: dates}, nil
}

func (p *PostgresProvider) PicksForDate(ctx context.Context, vc domain.ViewContext, date string) (*domain.PicksPayload, error) {
	if err := checkDate(date); err != nil {
		return nil, err
	}
	season, err := seasonFilter(vc)
	if err != nil {
		return nil, err
	}
	rows, err := p.pool.Query(ctx,
		`SELECT `+pickColumns+` FROM picks WHERE season = $1 AND date = $2::date ORDER BY stars DESC`,
		season, date)
	if err != nil {
		return nil, fmt.Errorf("picks %d/%s: %w", season, date, err)
	}
	picks, err := pgx.CollectRows(rows, scanPick)
	if err != nil {
		return nil, fmt.Errorf("picks %d/%s: %w", season, date, err)
	}
	if len(picks) == 0 {
		return nil, fmt.Errorf("picks %d/%s: %w", season, date, ErrNotFound)
	}
	return sanitize(p.log, &domain.PicksPayload{Date: date, Picks: picks}, vc.Season, date), nil
}

// TodayPicks returns the picks of the latest indexed date.
func (p *PostgresProvider) TodayPicks(ctx context.Context, vc domain.ViewContext) (*domain.PicksPayload, error) {
	return latestPicks(ctx, p, vc)
}

// Results queries the results tables concurrently on the pool. The summary
// is required; any other failed table is reported in Warnings.
func (p *PostgresProvider) Results(ctx context.Context, vc domain.ViewContext) (*domain.ResultsPayload, error) {
	season, err := seasonFilter(vc)
	if err != nil {
		return nil, err
	}

	var (
		out        domain.ResultsPayload
		summaryErr error
	)
	queries := []query{
		{"season_summaries", func(ctx context.Context) error {
			var raw []byte
			summaryErr = p.pool.QueryRow(ctx,
				`SELECT summary, coalesce(updated_at::text, '') FROM season_summaries WHERE season = $1 LIMIT 1`,
				season).Scan(&raw, &out.GeneratedAt)
			if errors.Is(summaryErr, pgx.ErrNoRows) {
				summaryErr = ErrNotFound
			}
			if summaryErr == nil {
				summaryErr = json.Unmarshal(raw, &out.Summary)
			}
			return summaryErr
		}},
		{"market_stats", func(ctx context.Context) error {
			rows, err := p.pool.Query(ctx,
				`SELECT market, bets, wins, losses, pushes, coalesce(win_rate, 0), coalesce(pnl, 0), coalesce(roi, 0)
				 FROM market_stats WHERE season = $1`, season)
			if err != nil {
				return err
			}
			out.ByMarket, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.MarketStat, error) {
				var m domain.MarketStat
				err := row.Scan(&m.Market, &m.Bets, &m.Wins, &m.Losses, &m.Pushes, &m.WinRate, &m.PnL, &m.ROI)
				return m, err
			})
			return err
		}},
		{"direction_stats", func(ctx context.Context) error {
			rows, err := p.pool.Query(ctx,
				`SELECT direction, bets, win_rate, roi FROM direction_stats WHERE season = $1`, season)
			if err != nil {
				return err
			}
			out.DirectionStats, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.DirectionStat, error) {
				var d domain.DirectionStat
				err := row.Scan(&d.Direction, &d.Bets, &d.WinRate, &d.ROI)
				return d, err
			})
			return err
		}},
		{"bankroll_curve", func(ctx context.Context) error {
			rows, err := p.pool.Query(ctx,
				`SELECT date::text, flat, pct, coalesce(kelly, 0), coalesce(flat_day_pnl, 0)
				 FROM bankroll_curve WHERE season = $1 ORDER BY date`, season)
			if err != nil {
				return err
			}
			out.BankrollCurve, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.BankrollPoint, error) {
				var b domain.BankrollPoint
				err := row.Scan(&b.Date, &b.Flat, &b.Pct, &b.Kelly, &b.FlatDayPnL)
				return b, err
			})
			return err
		}},
		{"picks", func(ctx context.Context) error {
			rows, err := p.pool.Query(ctx,
				`SELECT date::text, player, market, direction, line, actual, result, pnl, stars
				 FROM picks WHERE season = $1 AND result IS NOT NULL
				 ORDER BY date DESC LIMIT $2`, season, recentLimit)
			if err != nil {
				return err
			}
			out.Recent, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.RecentPick, error) {
				var r domain.RecentPick
				var result string
				err := row.Scan(&r.Date, &r.Player, &r.Market, &r.Direction, &r.Line, &r.Actual, &result, &r.PnL, &r.Stars)
				r.Result = domain.ParseResult(result)
				return r, err
			})
			return err
		}},
	}
	failed := gatherParts(ctx, p.log, vc.Season, queries)
	if summaryErr != nil {
		return nil, fmt.Errorf("results %d: %w", season, summaryErr)
	}
	if out.Summary == nil {
		return nil, fmt.Errorf("results %d: %w", season, ErrNotFound)
	}
	for _, name := range failed {
		if name != "season_summaries" {
			out.Warnings = append(out.Warnings, name)
		}
	}
	out.DeriveCumulative()
	return &out, nil
}
