package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"GameRegMonitor/internal/domain"
	"GameRegMonitor/internal/ports"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const defaultQueryLimit = 500

var itemColumns = []string{
	"id", "region", "category_l1", "category_l2", "title", "date", "status",
	"summary", "source_name", "source_url", "lang", "tier", "impact_score",
	"summary_translated", "created_at",
}

// SQLRepository persists labelled items and fetch history in SQLite or Postgres.
type SQLRepository struct {
	db     *sql.DB
	driver string
	sb     sq.StatementBuilderType
	now    func() time.Time
}

var _ ports.ItemRepository = (*SQLRepository)(nil)

// Open connects to the database, verifies the connection and applies the schema.
func Open(ctx context.Context, driver, dsn string) (*SQLRepository, error) {
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		// a single connection keeps :memory: databases alive and avoids SQLITE_BUSY
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	repo := NewSQLRepository(db, driver)
	if err := repo.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// NewSQLRepository wires an existing sql.DB. The driver picks the placeholder style.
func NewSQLRepository(db *sql.DB, driver string) *SQLRepository {
	var placeholder sq.PlaceholderFormat = sq.Question
	if driver == DriverPostgres {
		placeholder = sq.Dollar
	}
	return &SQLRepository{
		db:     db,
		driver: driver,
		sb:     sq.StatementBuilder.PlaceholderFormat(placeholder),
		now:    time.Now,
	}
}

// Close releases the underlying connection pool.
func (r *SQLRepository) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

// SaveItems inserts items in one transaction and returns the ones that were
// new. Items whose (title, source_url) already exist are skipped.
func (r *SQLRepository) SaveItems(ctx context.Context, items []domain.LabeledItem) ([]domain.LabeledItem, error) {
	if r.db == nil || len(items) == 0 {
		return nil, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}

	now := r.now().UTC()
	createdAt := now.Format(time.RFC3339)
	var inserted []domain.LabeledItem
	for _, item := range items {
		query, args, err := r.sb.Insert("items").
			Columns(
				"region", "category_l1", "category_l2", "title", "date", "status",
				"summary", "source_name", "source_url", "lang", "tier", "impact_score",
				"summary_translated", "created_at",
			).
			Values(
				item.Region, item.CategoryL1, item.CategoryL2, item.Title, item.Date, item.Status,
				item.Summary, item.SourceName, item.SourceURL, item.Lang, string(item.Tier), item.ImpactScore,
				item.SummaryTranslated, createdAt,
			).
			Suffix("ON CONFLICT (title, source_url) DO NOTHING").
			ToSql()
		if err != nil {
			_ = tx.Rollback()
			return nil, fmt.Errorf("build insert: %w", err)
		}

		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			_ = tx.Rollback()
			return nil, fmt.Errorf("persist item %q: %w", item.Title, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			_ = tx.Rollback()
			return nil, fmt.Errorf("rows affected: %w", err)
		}
		if n > 0 {
			item.CreatedAt = now
			inserted = append(inserted, item)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit items: %w", err)
	}
	return inserted, nil
}

// QueryItems filters stored items, most impactful and newest first.
func (r *SQLRepository) QueryItems(ctx context.Context, q domain.Query) ([]domain.LabeledItem, error) {
	if r.db == nil {
		return nil, nil
	}

	limit := q.Limit
	if limit <= 0 {
		limit = defaultQueryLimit
	}

	builder := r.sb.Select(itemColumns...).From("items")
	if q.Region != "" {
		builder = builder.Where(sq.Eq{"region": q.Region})
	}
	if q.Category != "" {
		builder = builder.Where(sq.Eq{"category_l1": q.Category})
	}
	if q.Status != "" {
		builder = builder.Where(sq.Eq{"status": q.Status})
	}
	if q.Keyword != "" {
		builder = builder.Where(r.keywordFilter(q.Keyword))
	}
	if q.Days > 0 {
		cutoff := r.now().AddDate(0, 0, -q.Days).Format(domain.DateLayout)
		builder = builder.Where(sq.GtOrEq{"date": cutoff})
	}

	query, args, err := builder.
		OrderBy("impact_score DESC", "date DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var items []domain.LabeledItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return items, nil
}

func (r *SQLRepository) keywordFilter(keyword string) sq.Sqlizer {
	pattern := "%" + keyword + "%"
	if r.driver == DriverPostgres {
		return sq.Or{
			sq.ILike{"title": pattern},
			sq.ILike{"summary": pattern},
			sq.ILike{"summary_translated": pattern},
		}
	}
	return sq.Or{
		sq.Like{"title": pattern},
		sq.Like{"summary": pattern},
		sq.Like{"summary_translated": pattern},
	}
}

func scanItem(rows *sql.Rows) (domain.LabeledItem, error) {
	var (
		item      domain.LabeledItem
		tier      string
		createdAt string
	)
	err := rows.Scan(
		&item.ID, &item.Region, &item.CategoryL1, &item.CategoryL2, &item.Title, &item.Date,
		&item.Status, &item.Summary, &item.SourceName, &item.SourceURL, &item.Lang, &tier,
		&item.ImpactScore, &item.SummaryTranslated, &createdAt,
	)
	if err != nil {
		return domain.LabeledItem{}, fmt.Errorf("scan item: %w", err)
	}

	if t, ok := domain.ParseTier(tier); ok {
		item.Tier = t
	} else {
		item.Tier = domain.TierNews
	}
	if ts, err := time.Parse(time.RFC3339, createdAt); err == nil {
		item.CreatedAt = ts
	}
	return item, nil
}

// Stats aggregates totals per region, category and impact.
func (r *SQLRepository) Stats(ctx context.Context) (domain.Stats, error) {
	stats := domain.Stats{
		ByRegion:   map[string]int{},
		ByCategory: map[string]int{},
		ByImpact:   map[int]int{},
	}
	if r.db == nil {
		return stats, nil
	}

	query, args, err := r.sb.Select("COUNT(*)", "COALESCE(MAX(date), '')").From("items").ToSql()
	if err != nil {
		return stats, fmt.Errorf("build totals: %w", err)
	}
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&stats.Total, &stats.LatestDate); err != nil {
		return stats, fmt.Errorf("query totals: %w", err)
	}

	if err := r.countBy(ctx, "region", func(key string, n int) { stats.ByRegion[key] = n }); err != nil {
		return stats, err
	}
	if err := r.countBy(ctx, "category_l1", func(key string, n int) { stats.ByCategory[key] = n }); err != nil {
		return stats, err
	}

	query, args, err = r.sb.Select("impact_score", "COUNT(*)").From("items").GroupBy("impact_score").ToSql()
	if err != nil {
		return stats, fmt.Errorf("build impact counts: %w", err)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return stats, fmt.Errorf("query impact counts: %w", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var impact, n int
		if err := rows.Scan(&impact, &n); err != nil {
			return stats, fmt.Errorf("scan impact count: %w", err)
		}
		stats.ByImpact[impact] = n
	}
	if err := rows.Err(); err != nil {
		return stats, fmt.Errorf("rows iteration: %w", err)
	}
	return stats, nil
}

func (r *SQLRepository) countBy(ctx context.Context, column string, set func(string, int)) error {
	query, args, err := r.sb.Select(column, "COUNT(*)").From("items").GroupBy(column).ToSql()
	if err != nil {
		return fmt.Errorf("build %s counts: %w", column, err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("query %s counts: %w", column, err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			key string
			n   int
		)
		if err := rows.Scan(&key, &n); err != nil {
			return fmt.Errorf("scan %s count: %w", column, err)
		}
		set(key, n)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("rows iteration: %w", err)
	}
	return nil
}

// LogFetch records the outcome of one source fetch.
func (r *SQLRepository) LogFetch(ctx context.Context, entry domain.FetchLog) error {
	if r.db == nil {
		return nil
	}

	fetchedAt := entry.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = r.now()
	}
	status := entry.Status
	if status == "" {
		status = domain.FetchOK
	}

	query, args, err := r.sb.Insert("fetch_log").
		Columns("run_id", "source_name", "item_count", "status", "error_msg", "fetched_at").
		Values(entry.RunID, entry.Source, entry.ItemCount, string(status), entry.Error, fetchedAt.UTC().Format(time.RFC3339)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build fetch log: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert fetch log: %w", err)
	}
	return nil
}
