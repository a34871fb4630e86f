package mysql

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"

	"hotel_tarifas/internal/domain"
)

// Repo is the MySQL-backed catalog store. Every mutation runs in a
// transaction that also bumps the single-row version counter, so readers can
// key caches off one monotonic number.
type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func dec(b []byte) decimal.Decimal {
	d, err := decimal.NewFromString(string(b))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Snapshot reads the version and all three tables inside one repeatable-read
// transaction, so the copy is consistent even against concurrent writes.
func (r *Repo) Snapshot(ctx context.Context) (domain.CatalogSnapshot, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return domain.CatalogSnapshot{}, domain.Unavailable(err)
	}
	defer tx.Rollback()

	var snap domain.CatalogSnapshot
	if err := tx.QueryRowContext(ctx, selectVersionSQL).Scan(&snap.Version); err != nil {
		return domain.CatalogSnapshot{}, domain.Unavailable(err)
	}
	if snap.Periods, err = scanPeriods(tx.QueryContext(ctx, selectPeriodCols)); err != nil {
		return domain.CatalogSnapshot{}, domain.Unavailable(err)
	}
	if snap.Rules, err = scanRules(tx.QueryContext(ctx, selectRuleCols)); err != nil {
		return domain.CatalogSnapshot{}, domain.Unavailable(err)
	}
	if snap.Categories, err = scanCategories(tx.QueryContext(ctx, selectCategoryCols)); err != nil {
		return domain.CatalogSnapshot{}, domain.Unavailable(err)
	}
	if err := tx.Commit(); err != nil {
		return domain.CatalogSnapshot{}, domain.Unavailable(err)
	}
	return snap, nil
}

func (r *Repo) Version(ctx context.Context) (int64, error) {
	var v int64
	if err := r.db.QueryRowContext(ctx, selectVersionSQL).Scan(&v); err != nil {
		return 0, domain.Unavailable(err)
	}
	return v, nil
}

func (r *Repo) ListPeriods(ctx context.Context) ([]domain.TariffPeriod, error) {
	ps, err := scanPeriods(r.db.QueryContext(ctx, selectPeriodCols))
	if err != nil {
		return nil, domain.Unavailable(err)
	}
	return ps, nil
}

func (r *Repo) GetPeriod(ctx context.Context, id string) (domain.TariffPeriod, error) {
	ps, err := scanPeriods(r.db.QueryContext(ctx, selectPeriodCols+` WHERE id = ?`, id))
	if err != nil {
		return domain.TariffPeriod{}, domain.Unavailable(err)
	}
	if len(ps) == 0 {
		return domain.TariffPeriod{}, domain.NotFound("tariff period %s not found", id)
	}
	return ps[0], nil
}

func (r *Repo) ListRules(ctx context.Context) ([]domain.PriceRule, error) {
	rs, err := scanRules(r.db.QueryContext(ctx, selectRuleCols))
	if err != nil {
		return nil, domain.Unavailable(err)
	}
	return rs, nil
}

func (r *Repo) GetRule(ctx context.Context, id string) (domain.PriceRule, error) {
	rs, err := scanRules(r.db.QueryContext(ctx, selectRuleCols+` WHERE id = ?`, id))
	if err != nil {
		return domain.PriceRule{}, domain.Unavailable(err)
	}
	if len(rs) == 0 {
		return domain.PriceRule{}, domain.NotFound("price rule %s not found", id)
	}
	return rs[0], nil
}

func (r *Repo) RulesForPeriod(ctx context.Context, periodID string) ([]domain.PriceRule, error) {
	rs, err := scanRules(r.db.QueryContext(ctx, selectRuleCols+` WHERE tariff_period_id = ?`, periodID))
	if err != nil {
		return nil, domain.Unavailable(err)
	}
	return rs, nil
}

func (r *Repo) ListCategories(ctx context.Context) ([]domain.AccommodationCategory, error) {
	cs, err := scanCategories(r.db.QueryContext(ctx, selectCategoryCols))
	if err != nil {
		return nil, domain.Unavailable(err)
	}
	return cs, nil
}

func (r *Repo) GetCategory(ctx context.Context, id string) (domain.AccommodationCategory, error) {
	cs, err := scanCategories(r.db.QueryContext(ctx, selectCategoryCols+` WHERE id = ?`, id))
	if err != nil {
		return domain.AccommodationCategory{}, domain.Unavailable(err)
	}
	if len(cs) == 0 {
		return domain.AccommodationCategory{}, domain.NotFound("accommodation category %s not found", id)
	}
	return cs[0], nil
}

func (r *Repo) InsertPeriod(ctx context.Context, p domain.TariffPeriod) error {
	return r.mutate(ctx, insertPeriodSQL,
		p.ID, p.Name, p.StartDate, p.EndDate, p.MinNights, p.IsSpecial, p.Priority, valStr(p.Color))
}

func (r *Repo) UpdatePeriod(ctx context.Context, p domain.TariffPeriod) error {
	return r.mutate(ctx, updatePeriodSQL,
		p.Name, p.StartDate, p.EndDate, p.MinNights, p.IsSpecial, p.Priority, valStr(p.Color), p.ID)
}

func (r *Repo) DeletePeriod(ctx context.Context, id string) error {
	return r.mutate(ctx, `DELETE FROM tariff_periods WHERE id = ?`, id)
}

func (r *Repo) InsertRule(ctx context.Context, rule domain.PriceRule) error {
	return r.mutate(ctx, insertRuleSQL,
		rule.ID, rule.TariffPeriodID, rule.CategoryID, rule.Guests,
		rule.PriceCreditCard.StringFixed(2), rule.PricePix.StringFixed(2),
		string(rule.DiscountType), rule.DiscountValue.StringFixed(2))
}

func (r *Repo) UpdateRule(ctx context.Context, rule domain.PriceRule) error {
	return r.mutate(ctx, updateRuleSQL,
		rule.TariffPeriodID, rule.CategoryID, rule.Guests,
		rule.PriceCreditCard.StringFixed(2), rule.PricePix.StringFixed(2),
		string(rule.DiscountType), rule.DiscountValue.StringFixed(2), rule.ID)
}

func (r *Repo) DeleteRule(ctx context.Context, id string) error {
	return r.mutate(ctx, `DELETE FROM price_rules WHERE id = ?`, id)
}

// mutate wraps one write statement and the version bump in a transaction.
func (r *Repo) mutate(ctx context.Context, query string, args ...any) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Unavailable(err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return domain.Unavailable(err)
	}
	if _, err := tx.ExecContext(ctx, bumpVersionSQL); err != nil {
		return domain.Unavailable(err)
	}
	if err := tx.Commit(); err != nil {
		return domain.Unavailable(err)
	}
	return nil
}

// ---- row scanners ----

func scanPeriods(rows *sql.Rows, qerr error) ([]domain.TariffPeriod, error) {
	if qerr != nil {
		return nil, qerr
	}
	defer rows.Close()

	var out []domain.TariffPeriod
	for rows.Next() {
		var p domain.TariffPeriod
		var start, end time.Time
		var color sql.NullString
		if err := rows.Scan(&p.ID, &p.Name, &start, &end, &p.MinNights, &p.IsSpecial, &p.Priority, &color); err != nil {
			return nil, err
		}
		p.StartDate = domain.DayOf(start)
		p.EndDate = domain.DayOf(end)
		if color.Valid {
			c := color.String
			p.Color = &c
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanRules(rows *sql.Rows, qerr error) ([]domain.PriceRule, error) {
	if qerr != nil {
		return nil, qerr
	}
	defer rows.Close()

	var out []domain.PriceRule
	for rows.Next() {
		var r domain.PriceRule
		var cc, pix, dv []byte
		var dt string
		if err := rows.Scan(&r.ID, &r.TariffPeriodID, &r.CategoryID, &r.Guests, &cc, &pix, &dt, &dv); err != nil {
			return nil, err
		}
		r.PriceCreditCard = dec(cc)
		r.PricePix = dec(pix)
		r.DiscountType = domain.DiscountType(dt)
		r.DiscountValue = dec(dv)
		out = append(out, r)
	}
	return out, rows.Err()
}

func scanCategories(rows *sql.Rows, qerr error) ([]domain.AccommodationCategory, error) {
	if qerr != nil {
		return nil, qerr
	}
	defer rows.Close()

	var out []domain.AccommodationCategory
	for rows.Next() {
		var c domain.AccommodationCategory
		if err := rows.Scan(&c.ID, &c.Name, &c.MaxGuests); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
