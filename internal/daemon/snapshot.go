package daemon

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/theirongolddev/tally/internal/model"
	"github.com/theirongolddev/tally/internal/pipeline"
)

// Snapshot is a compact budget state for status/event payloads.
type Snapshot struct {
	At                  time.Time        `json:"at"`
	Budgets             int              `json:"budgets"`
	TotalIncomeCents    int64            `json:"total_income_cents"`
	TotalAllocatedCents int64            `json:"total_allocated_cents"`
	UnbalancedCount     int              `json:"unbalanced_count"`
	Hashes              map[int64]string `json:"hashes,omitempty"`
}

// Delta captures snapshot changes between polls.
type Delta struct {
	Budgets             int     `json:"budgets"`
	TotalIncomeCents    int64   `json:"total_income_cents"`
	TotalAllocatedCents int64   `json:"total_allocated_cents"`
	UnbalancedCount     int     `json:"unbalanced_count"`
	Added               []int64 `json:"added,omitempty"`
	Removed             []int64 `json:"removed,omitempty"`
	Changed             []int64 `json:"changed,omitempty"`
}

func (d Delta) isZero() bool {
	return d.Budgets == 0 &&
		d.TotalIncomeCents == 0 &&
		d.TotalAllocatedCents == 0 &&
		d.UnbalancedCount == 0 &&
		len(d.Added) == 0 &&
		len(d.Removed) == 0 &&
		len(d.Changed) == 0
}

// SnapshotOf rolls budgets up into a Snapshot taken at at.
func SnapshotOf(budgets []model.Budget, at time.Time) Snapshot {
	sum := pipeline.Summarize(budgets)
	snap := Snapshot{
		At:                  at,
		Budgets:             len(budgets),
		TotalIncomeCents:    sum.TotalIncomeCents,
		TotalAllocatedCents: sum.TotalAllocatedCents,
		UnbalancedCount:     sum.UnbalancedCount,
		Hashes:              make(map[int64]string, len(budgets)),
	}
	for _, b := range budgets {
		snap.Hashes[b.ID] = hashBudget(b)
	}
	return snap
}

// hashBudget fingerprints the fields a user can change. Timestamps are
// left out so a no-op save does not register as a change.
func hashBudget(b model.Budget) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d|%d|%d|%d\n", b.ID, b.Month, b.Year, b.IncomeCents)

	cats := slices.Clone(b.Categories)
	sort.Slice(cats, func(i, j int) bool { return cats[i].ID < cats[j].ID })
	for _, c := range cats {
		fmt.Fprintf(&sb, "%d|%s|%d|%d|%s|%s|%d\n",
			c.ID, c.Name, c.AllocatedCents, c.Order, c.Description, c.CategoryGroup, c.IsActive)
	}
	sumBytes := sha256.Sum256([]byte(sb.String()))
	return hex.EncodeToString(sumBytes[:8])
}

func diffSnapshots(prev, curr Snapshot) Delta {
	d := Delta{
		Budgets:             curr.Budgets - prev.Budgets,
		TotalIncomeCents:    curr.TotalIncomeCents - prev.TotalIncomeCents,
		TotalAllocatedCents: curr.TotalAllocatedCents - prev.TotalAllocatedCents,
		UnbalancedCount:     curr.UnbalancedCount - prev.UnbalancedCount,
	}
	for id, h := range curr.Hashes {
		old, ok := prev.Hashes[id]
		switch {
		case !ok:
			d.Added = append(d.Added, id)
		case old != h:
			d.Changed = append(d.Changed, id)
		}
	}
	for id := range prev.Hashes {
		if _, ok := curr.Hashes[id]; !ok {
			d.Removed = append(d.Removed, id)
		}
	}
	slices.Sort(d.Added)
	slices.Sort(d.Removed)
	slices.Sort(d.Changed)
	return d
}
