package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/adorzia/atelier/internal/domain/publication"
	"github.com/adorzia/atelier/internal/domain/rank"
	"github.com/adorzia/atelier/pkg/logger"
	"github.com/adorzia/atelier/pkg/metrics"
)

const (
	driverName         = "sqlite"
	memoryPath         = ":memory:"
	defaultBusyTimeout = 5 * time.Second
)

// SQLiteStore implements Store on a single-writer SQLite database. One open
// connection plus immediate transactions serialize every write, so two sales
// for the same designer can never interleave.
type SQLiteStore struct {
	db          *sql.DB
	ledger      *rank.Ledger
	machine     *publication.Machine
	log         logger.Logger
	now         func() time.Time
	busyTimeout time.Duration
}

var _ Store = (*SQLiteStore)(nil)

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Open connects to the database at path, ":memory:" for a private in-process
// database, and applies migrations.
func Open(ctx context.Context, path string, ledger *rank.Ledger, machine *publication.Machine, opts ...Option) (*SQLiteStore, error) {
	s := &SQLiteStore{
		ledger:      ledger,
		machine:     machine,
		log:         logger.Nop(),
		now:         time.Now,
		busyTimeout: defaultBusyTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}

	db, err := sql.Open(driverName, s.dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	s.db = db

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite %s: %w", path, err)
	}
	for _, stmt := range migrations() {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}
	return s, nil
}

func (s *SQLiteStore) dsn(path string) string {
	q := url.Values{}
	q.Set("_txlock", "immediate")
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", s.busyTimeout.Milliseconds()))
	q.Add("_pragma", "foreign_keys(1)")
	if path != memoryPath {
		q.Add("_pragma", "journal_mode(WAL)")
	}
	return path + "?" + q.Encode()
}

// Ping checks the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) withTx(ctx context.Context, op string, fn func(*sql.Tx) error) error {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryLatency(op, float64(time.Since(start).Microseconds())/1000)
	}()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin: %w", op, err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", op, err)
	}
	return nil
}

const designerColumns = `id, sc_centi, founder_tier, founder_purchased_at, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *SQLiteStore) scanDesigner(ctx context.Context, row rowScanner) (Designer, error) {
	var (
		d         Designer
		centi     int64
		tier      sql.NullString
		purchased sql.NullInt64
		created   int64
		updated   int64
	)
	if err := row.Scan(&d.ID, &centi, &tier, &purchased, &created, &updated); err != nil {
		return Designer{}, err
	}
	d.SCTotal = float64(centi) / 100
	d.StyleCredits = centi / 100
	d.FounderPurchasedAt = fromNullNanos(purchased)
	d.CreatedAt = fromNanos(created)
	d.UpdatedAt = fromNanos(updated)
	if tier.Valid && tier.String != "" {
		d.Founder = s.resolveFounder(ctx, d.ID, tier.String)
	}
	return d, nil
}

// resolveFounder is where stored tier identifiers enter the domain. Anything
// that is not a known founder tier grants no bonus and is reported.
func (s *SQLiteStore) resolveFounder(ctx context.Context, designerID, raw string) *rank.Definition {
	def, ok := s.ledger.ResolveOrLowest(raw)
	if ok && def.Founder {
		return &def
	}
	metrics.RecordRankFallback()
	s.log.Warn(ctx, "stored founder tier did not resolve; no bonus applied",
		logger.String("designer_id", designerID),
		logger.String("founder_tier", raw),
		logger.String("fallback_rank", string(def.Key)),
	)
	return nil
}

func (s *SQLiteStore) readDesigner(ctx context.Context, q queryer, designerID string) (Designer, error) {
	row := q.QueryRowContext(ctx, `SELECT `+designerColumns+` FROM designers WHERE id = ?`, designerID)
	d, err := s.scanDesigner(ctx, row)
	if errors.Is(err, sql.ErrNoRows) {
		return Designer{}, fmt.Errorf("designer %s: %w", designerID, ErrNotFound)
	}
	if err != nil {
		return Designer{}, fmt.Errorf("read designer %s: %w", designerID, err)
	}
	return d, nil
}

func ensureDesigner(ctx context.Context, tx *sql.Tx, designerID string, now int64) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO designers (id, created_at, updated_at) VALUES (?, ?, ?) ON CONFLICT(id) DO NOTHING`,
		designerID, now, now)
	if err != nil {
		return fmt.Errorf("ensure designer %s: %w", designerID, err)
	}
	return nil
}

// GetDesigner returns the designer's current progression.
func (s *SQLiteStore) GetDesigner(ctx context.Context, designerID string) (Designer, error) {
	return s.readDesigner(ctx, s.db, designerID)
}

// AwardCredits appends a ledger entry and raises the designer's SC total.
func (s *SQLiteStore) AwardCredits(ctx context.Context, a Award) (AwardResult, error) {
	switch {
	case strings.TrimSpace(a.DesignerID) == "":
		return AwardResult{}, fmt.Errorf("%w: designer id is required", ErrInvalidAward)
	case math.IsNaN(a.Amount) || math.IsInf(a.Amount, 0) || a.Amount < 0:
		return AwardResult{}, fmt.Errorf("%w: amount must be a non-negative number, got %v", ErrInvalidAward, a.Amount)
	case a.Amount > MaxAwardAmount:
		return AwardResult{}, fmt.Errorf("%w: amount %v exceeds %.0f", ErrInvalidAward, a.Amount, MaxAwardAmount)
	}
	if _, err := ParseSource(string(a.Source)); err != nil {
		return AwardResult{}, err
	}
	if a.EntryID == "" {
		a.EntryID = uuid.NewString()
	}

	centi := int64(math.Round(a.Amount * 100))
	now := s.now().UTC().UnixNano()
	res := AwardResult{EntryID: a.EntryID}

	err := s.withTx(ctx, "award_credits", func(tx *sql.Tx) error {
		if err := ensureDesigner(ctx, tx, a.DesignerID, now); err != nil {
			return err
		}
		r, err := tx.ExecContext(ctx,
			`INSERT INTO sc_ledger (entry_id, designer_id, source, amount_centi, reference, created_at)
			 VALUES (?, ?, ?, ?, ?, ?) ON CONFLICT(entry_id) DO NOTHING`,
			a.EntryID, a.DesignerID, string(a.Source), centi, a.Reference, now)
		if err != nil {
			return fmt.Errorf("insert ledger entry: %w", err)
		}
		n, err := r.RowsAffected()
		if err != nil {
			return fmt.Errorf("insert ledger entry: %w", err)
		}

		if n == 1 {
			if _, err := tx.ExecContext(ctx,
				`UPDATE designers SET sc_centi = sc_centi + ?, updated_at = ? WHERE id = ?`,
				centi, now, a.DesignerID); err != nil {
				return fmt.Errorf("update sc total: %w", err)
			}
			res.Applied = true
		} else {
			var owner string
			if err := tx.QueryRowContext(ctx,
				`SELECT designer_id FROM sc_ledger WHERE entry_id = ?`, a.EntryID).Scan(&owner); err != nil {
				return fmt.Errorf("read ledger entry: %w", err)
			}
			if owner != a.DesignerID {
				return fmt.Errorf("%w: %s", ErrDuplicateEntry, a.EntryID)
			}
		}

		d, err := s.readDesigner(ctx, tx, a.DesignerID)
		if err != nil {
			return err
		}
		res.Designer = d
		return nil
	})
	if err != nil {
		return AwardResult{}, err
	}
	return res, nil
}

// RecordSale computes and persists one sale atomically. The designer row is
// read inside the write transaction, so calc sees the SC and founder tier that
// are current at commit time.
func (s *SQLiteStore) RecordSale(ctx context.Context, designerID, productID string, calc SaleFunc) (SaleRecord, error) {
	now := s.now().UTC()
	rec := SaleRecord{
		SaleID:     uuid.NewString(),
		EarningID:  uuid.NewString(),
		RecordedAt: now,
	}

	err := s.withTx(ctx, "record_sale", func(tx *sql.Tx) error {
		d, err := s.readDesigner(ctx, tx, designerID)
		if err != nil {
			return err
		}
		res, err := calc(d)
		if err != nil {
			return err
		}

		ts := now.UnixNano()
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO sales (id, designer_id, product_id, quantity, production_cost, retail_price, total_profit_cents, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.SaleID, designerID, productID, res.Quantity, res.ProductionCost, res.RetailPrice, res.TotalProfitCents, ts); err != nil {
			return fmt.Errorf("insert sale: %w", err)
		}

		var founder sql.NullString
		if res.FounderTier != nil {
			founder = sql.NullString{String: string(*res.FounderTier), Valid: true}
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO earnings (id, sale_id, designer_id, style_credits, rank, founder_tier, commission, designer_cents, platform_cents, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.EarningID, rec.SaleID, designerID, res.StyleCredits, string(res.Rank), founder,
			res.TotalCommission, res.DesignerPayoutCents, res.PlatformPayoutCents, ts); err != nil {
			return fmt.Errorf("insert earnings: %w", err)
		}

		rec.Result = res
		return nil
	})
	if err != nil {
		return SaleRecord{}, err
	}
	return rec, nil
}

// PurchaseFounder grants tier to the designer.
func (s *SQLiteStore) PurchaseFounder(ctx context.Context, designerID string, tier rank.Key) (Designer, error) {
	def, err := s.ledger.Founder(tier)
	if err != nil {
		return Designer{}, err
	}
	now := s.now().UTC().UnixNano()

	var out Designer
	err = s.withTx(ctx, "purchase_founder", func(tx *sql.Tx) error {
		if err := ensureDesigner(ctx, tx, designerID, now); err != nil {
			return err
		}

		var current sql.NullString
		if err := tx.QueryRowContext(ctx,
			`SELECT founder_tier FROM designers WHERE id = ?`, designerID).Scan(&current); err != nil {
			return fmt.Errorf("read founder tier: %w", err)
		}
		if current.Valid && current.String != "" {
			return fmt.Errorf("%w: %s holds %s", ErrFounderAlreadySet, designerID, current.String)
		}

		var taken int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM designers WHERE founder_tier = ?`, string(def.Key)).Scan(&taken); err != nil {
			return fmt.Errorf("count founder slots: %w", err)
		}
		if taken >= def.SlotCap {
			return fmt.Errorf("%w: %s (%d/%d)", ErrFounderSoldOut, def.Key, taken, def.SlotCap)
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE designers SET founder_tier = ?, founder_purchased_at = ?, updated_at = ? WHERE id = ?`,
			string(def.Key), now, now, designerID); err != nil {
			return fmt.Errorf("set founder tier: %w", err)
		}

		out, err = s.readDesigner(ctx, tx, designerID)
		return err
	})
	if err != nil {
		return Designer{}, err
	}
	return out, nil
}

// TopDesigners returns designers ordered by SC, highest first. Ties break on id.
func (s *SQLiteStore) TopDesigners(ctx context.Context, limit int) ([]Designer, error) {
	if limit < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, limit)
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+designerColumns+` FROM designers ORDER BY sc_centi DESC, id ASC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("top designers: %w", err)
	}
	defer rows.Close()

	out := make([]Designer, 0, limit)
	for rows.Next() {
		d, err := s.scanDesigner(ctx, rows)
		if err != nil {
			return nil, fmt.Errorf("top designers: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// CountDesigners returns the number of designers.
func (s *SQLiteStore) CountDesigners(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM designers`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count designers: %w", err)
	}
	return n, nil
}

// Stats summarizes designers, projects, sales and awarded credits.
func (s *SQLiteStore) Stats(ctx context.Context) (Stats, error) {
	st := Stats{
		Founders: make(map[rank.Key]int),
		Projects: make(map[publication.Status]int),
	}

	var err error
	if st.Designers, err = s.CountDesigners(ctx); err != nil {
		return Stats{}, err
	}

	if err := s.groupCount(ctx,
		`SELECT founder_tier, COUNT(*) FROM designers WHERE founder_tier IS NOT NULL GROUP BY founder_tier`,
		func(k string, n int) { st.Founders[rank.Key(k)] = n }); err != nil {
		return Stats{}, err
	}
	if err := s.groupCount(ctx,
		`SELECT status, COUNT(*) FROM projects GROUP BY status`,
		func(k string, n int) { st.Projects[publication.Status(k)] = n }); err != nil {
		return Stats{}, err
	}

	var profit, designer, platform, awarded int64
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(total_profit_cents), 0) FROM sales`).Scan(&st.Sales, &profit); err != nil {
		return Stats{}, fmt.Errorf("sales stats: %w", err)
	}
	if err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(designer_cents), 0), COALESCE(SUM(platform_cents), 0) FROM earnings`).Scan(&designer, &platform); err != nil {
		return Stats{}, fmt.Errorf("earnings stats: %w", err)
	}
	if err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount_centi), 0) FROM sc_ledger`).Scan(&awarded); err != nil {
		return Stats{}, fmt.Errorf("ledger stats: %w", err)
	}
	st.TotalProfit = float64(profit) / 100
	st.DesignerPayouts = float64(designer) / 100
	st.PlatformPayouts = float64(platform) / 100
	st.StyleCreditsAwarded = float64(awarded) / 100
	return st, nil
}

func (s *SQLiteStore) groupCount(ctx context.Context, query string, set func(string, int)) error {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("group count: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			k string
			n int
		)
		if err := rows.Scan(&k, &n); err != nil {
			return fmt.Errorf("group count: %w", err)
		}
		set(k, n)
	}
	return rows.Err()
}

func fromNanos(n int64) time.Time {
	return time.Unix(0, n).UTC()
}

func fromNullNanos(n sql.NullInt64) *time.Time {
	if !n.Valid {
		return nil
	}
	t := fromNanos(n.Int64)
	return &t
}

func toNullNanos(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UTC().UnixNano(), Valid: true}
}
