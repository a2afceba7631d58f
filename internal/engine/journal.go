package engine

import (
	"fmt"
	"iter"

	"bidlevel/models"
)

// journal is the append-only log of committed edits since the last save.
// Retention is capped; once an entry falls off the cap it can no longer be
// undone.
type journal struct {
	limit   int
	entries []models.ChangeEntry
}

func newJournal(limit int) *journal {
	return &journal{limit: limit}
}

func (j *journal) record(e models.ChangeEntry) {
	j.entries = append(j.entries, e)
	if j.limit > 0 && len(j.entries) > j.limit {
		j.entries = j.entries[len(j.entries)-j.limit:]
	}
}

func (j *journal) pop() (models.ChangeEntry, bool) {
	if len(j.entries) == 0 {
		return models.ChangeEntry{}, false
	}
	e := j.entries[len(j.entries)-1]
	j.entries = j.entries[:len(j.entries)-1]
	return e, true
}

func (j *journal) clear() {
	j.entries = nil
}

func (j *journal) len() int {
	return len(j.entries)
}

// recent returns a copy of the n most recent entries, most recent first.
func (j *journal) recent(n int) []models.ChangeEntry {
	if n <= 0 || n > len(j.entries) {
		n = len(j.entries)
	}
	out := make([]models.ChangeEntry, 0, n)
	for i := len(j.entries) - 1; i >= len(j.entries)-n; i-- {
		out = append(out, j.entries[i])
	}
	return out
}

func historySeq(entries []models.ChangeEntry) iter.Seq[models.ChangeEntry] {
	return func(yield func(models.ChangeEntry) bool) {
		for _, e := range entries {
			if !yield(e) {
				return
			}
		}
	}
}

// DescribeChange renders a journal entry the way the leveling UI shows it.
func DescribeChange(e models.ChangeEntry, vendorName string) string {
	if vendorName == "" {
		vendorName = e.VendorID
	}
	if e.Field == models.FieldNotes {
		return fmt.Sprintf("Changed notes for %s", vendorName)
	}
	return fmt.Sprintf("Changed %s for %s from %g to %g", e.Field, vendorName, e.PrevNumber, e.NewNumber)
}
