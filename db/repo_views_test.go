package db

import (
	"context"
	"testing"
	"time"

	"facility_equipment_ledger/models"
)

func seedLedger(t *testing.T, r *Repo) {
	t.Helper()
	ctx := context.Background()
	mustCreateEquipment(t, r, "Football", 10, 10)
	mustCreateEquipment(t, r, "Chess", 4, 4)
	mustCreateEquipment(t, r, "Basketball", 6, 6)

	borrow := func(student, faculty string, lines ...BorrowLine) {
		t.Helper()
		if _, err := r.Borrow(ctx, BorrowInput{StudentID: student, Faculty: faculty, Items: lines}); err != nil {
			t.Fatalf("borrow %s: %v", student, err)
		}
	}
	borrow("S1", "Engineering", BorrowLine{Equipment: "Football", Qty: 3}, BorrowLine{Equipment: "Chess", Qty: 1})
	borrow("S2", "Science", BorrowLine{Equipment: "Football", Qty: 2})

	if _, err := r.Return(ctx, ReturnInput{StudentID: "S1", Faculty: "Engineering", Equipment: "Chess", Qty: 1}); err != nil {
		t.Fatalf("return: %v", err)
	}
	if _, err := r.RecordStat(ctx, "Basketball", 5, "2024-01-01"); err != nil {
		t.Fatalf("record stat: %v", err)
	}
}

func TestPendingReturnsGrouping(t *testing.T) {
	r := newTestRepo(t)
	seedLedger(t, r)

	students, err := r.PendingReturns(context.Background())
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(students) != 2 {
		t.Fatalf("students = %+v, want 2", students)
	}

	s1 := students[0]
	if s1.ID != "S1" || s1.Faculty != "Engineering" {
		t.Fatalf("first student: %+v", s1)
	}
	// Chess netted to zero, so only Football remains
	if len(s1.Items) != 1 || s1.Items[0].Equipment != "Football" || s1.Items[0].Remaining != 3 {
		t.Fatalf("S1 items: %+v", s1.Items)
	}

	s2 := students[1]
	if s2.ID != "S2" || len(s2.Items) != 1 || s2.Items[0].Remaining != 2 {
		t.Fatalf("second student: %+v", s2)
	}
}

// The grouped faculty must come from borrow rows; return rows may
// carry an empty or different faculty value.
func TestPendingReturnsFacultyFromBorrow(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	mustCreateEquipment(t, r, "Football", 10, 10)

	if _, err := r.Borrow(ctx, BorrowInput{
		StudentID: "S1",
		Faculty:   "Engineering",
		Items:     []BorrowLine{{Equipment: "Football", Qty: 5}},
	}); err != nil {
		t.Fatalf("borrow: %v", err)
	}
	// partial return with a stray faculty value
	if _, err := r.Return(ctx, ReturnInput{StudentID: "S1", Faculty: "Zoology", Equipment: "Football", Qty: 2}); err != nil {
		t.Fatalf("return: %v", err)
	}

	students, err := r.PendingReturns(ctx)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(students) != 1 || students[0].Faculty != "Engineering" {
		t.Fatalf("students = %+v, want faculty Engineering", students)
	}
	if students[0].Items[0].Remaining != 3 {
		t.Fatalf("remaining = %d, want 3", students[0].Items[0].Remaining)
	}
}

func TestPendingReturnsEmptyLedger(t *testing.T) {
	r := newTestRepo(t)

	students, err := r.PendingReturns(context.Background())
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if students == nil || len(students) != 0 {
		t.Fatalf("want empty non-nil slice, got %+v", students)
	}
}

func TestHistoryForDate(t *testing.T) {
	r := newTestRepo(t)
	seedLedger(t, r)

	today := time.Now().Format("2006-01-02")
	rows, err := r.HistoryForDate(context.Background(), today)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	// 2 borrows + 1 return landed today; the stat row is backdated
	if len(rows) != 3 {
		t.Fatalf("rows today = %d, want 3", len(rows))
	}
	for i := 1; i < len(rows); i++ {
		if rows[i].Timestamp.Before(rows[i-1].Timestamp) {
			t.Fatalf("rows not in ascending timestamp order")
		}
	}
	for _, row := range rows {
		switch row.Action {
		case models.ActionBorrow:
			if row.Status != StatusBorrowed {
				t.Fatalf("borrow status = %q", row.Status)
			}
		case models.ActionReturn:
			if row.Status != StatusReturned {
				t.Fatalf("return status = %q", row.Status)
			}
		}
	}

	past, err := r.HistoryForDate(context.Background(), "2024-01-01")
	if err != nil {
		t.Fatalf("history backdate: %v", err)
	}
	if len(past) != 1 || past[0].Action != models.ActionStat || past[0].Status != StatusStat {
		t.Fatalf("backdated rows: %+v", past)
	}
}

func TestUsageStatsOrderingAndFilters(t *testing.T) {
	r := newTestRepo(t)
	seedLedger(t, r)

	today := time.Now().Format("2006-01-02")
	rows, total, err := r.UsageStats(context.Background(), today, today, models.ActionBorrow)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	// Football borrows sum to 5, Chess to 1, descending
	if total != 6 || len(rows) != 2 {
		t.Fatalf("rows=%+v total=%d", rows, total)
	}
	if rows[0].Equipment != "Football" || rows[0].Qty != 5 || rows[1].Equipment != "Chess" {
		t.Fatalf("ordering: %+v", rows)
	}

	// empty range: empty result, never an error
	rows, total, err = r.UsageStats(context.Background(), "1999-01-01", "1999-12-31", "")
	if err != nil {
		t.Fatalf("empty range: %v", err)
	}
	if total != 0 || len(rows) != 0 || rows == nil {
		t.Fatalf("empty range rows=%+v total=%d", rows, total)
	}
}

func TestSnapshotDailyUsageIdempotent(t *testing.T) {
	r := newTestRepo(t)
	seedLedger(t, r)
	ctx := context.Background()

	n, err := r.SnapshotDailyUsage(ctx, "2024-01-01")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if n != 1 {
		t.Fatalf("snapshot rows = %d, want 1", n)
	}

	// rerun must upsert, not duplicate
	if _, err := r.SnapshotDailyUsage(ctx, "2024-01-01"); err != nil {
		t.Fatalf("snapshot rerun: %v", err)
	}
	rows, err := r.ListSnapshots(ctx, "2024-01-01")
	if err != nil {
		t.Fatalf("list snapshots: %v", err)
	}
	if len(rows) != 1 || rows[0].Equipment != "Basketball" || rows[0].Qty != 5 || rows[0].Action != models.ActionStat {
		t.Fatalf("snapshots: %+v", rows)
	}

	// a day with no transactions writes nothing
	n, err = r.SnapshotDailyUsage(ctx, "1999-01-01")
	if err != nil || n != 0 {
		t.Fatalf("empty day: n=%d err=%v", n, err)
	}
}
