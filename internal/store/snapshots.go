package store

import (
	"database/sql"
	"errors"
	"time"
)

// SnapshotRow is one recorded sync rollup.
type SnapshotRow struct {
	TakenAt             time.Time
	BudgetCount         int
	TotalIncomeCents    int64
	TotalAllocatedCents int64
	UnbalancedCount     int
}

// SaveSnapshot appends a rollup and trims history to keep rows.
func (c *Cache) SaveSnapshot(s SnapshotRow, keep int) error {
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.Exec(`INSERT INTO snapshots
		(taken_at, budget_count, total_income_cents, total_allocated_cents, unbalanced_count)
		VALUES (?, ?, ?, ?, ?)`,
		s.TakenAt.UTC().Format(time.RFC3339Nano), s.BudgetCount, s.TotalIncomeCents,
		s.TotalAllocatedCents, s.UnbalancedCount,
	)
	if err != nil {
		return err
	}

	if keep > 0 {
		_, err = tx.Exec(`DELETE FROM snapshots WHERE id NOT IN
			(SELECT id FROM snapshots ORDER BY id DESC LIMIT ?)`, keep)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// LatestSnapshot returns the most recent rollup. ok is false when none exist.
func (c *Cache) LatestSnapshot() (SnapshotRow, bool, error) {
	var s SnapshotRow
	var taken string
	err := c.db.QueryRow(`SELECT taken_at, budget_count, total_income_cents, total_allocated_cents, unbalanced_count
		FROM snapshots ORDER BY id DESC LIMIT 1`).
		Scan(&taken, &s.BudgetCount, &s.TotalIncomeCents, &s.TotalAllocatedCents, &s.UnbalancedCount)
	if errors.Is(err, sql.ErrNoRows) {
		return SnapshotRow{}, false, nil
	}
	if err != nil {
		return SnapshotRow{}, false, err
	}
	s.TakenAt, _ = time.Parse(time.RFC3339Nano, taken)
	return s, true, nil
}

// SnapshotCount returns the number of stored rollups.
func (c *Cache) SnapshotCount() (int, error) {
	var n int
	err := c.db.QueryRow("SELECT COUNT(*) FROM snapshots").Scan(&n)
	return n, err
}
