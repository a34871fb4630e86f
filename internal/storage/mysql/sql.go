package mysql

const insertPeriodSQL = `
INSERT INTO tariff_periods
  (id, name, start_date, end_date, min_nights, is_special, priority, color)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?)
`

const updatePeriodSQL = `
UPDATE tariff_periods SET
  name       = ?,
  start_date = ?,
  end_date   = ?,
  min_nights = ?,
  is_special = ?,
  priority   = ?,
  color      = ?
WHERE id = ?
`

const selectPeriodCols = `
SELECT id, name, start_date, end_date, min_nights, is_special, priority, color
FROM tariff_periods
`

const insertRuleSQL = `
INSERT INTO price_rules
  (id, tariff_period_id, category_id, guests, price_credit_card, price_pix, discount_type, discount_value)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?)
`

const updateRuleSQL = `
UPDATE price_rules SET
  tariff_period_id  = ?,
  category_id       = ?,
  guests            = ?,
  price_credit_card = ?,
  price_pix         = ?,
  discount_type     = ?,
  discount_value    = ?
WHERE id = ?
`

const selectRuleCols = `
SELECT id, tariff_period_id, category_id, guests, price_credit_card, price_pix, discount_type, discount_value
FROM price_rules
`

const selectCategoryCols = `
SELECT id, name, max_guests
FROM accommodation_categories
`

// Single-row version counter; bumped inside the same transaction as every
// catalog write.
const bumpVersionSQL = `UPDATE catalog_version SET version = version + 1 WHERE id = 1`

const selectVersionSQL = `SELECT version FROM catalog_version WHERE id = 1`
