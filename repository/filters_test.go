package repository

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"

	"timeclock/models"
)

func TestDateBeforeFilterShape(t *testing.T) {
	f := DateBeforeFilter("2024-03-01")
	expr, ok := f["$expr"].(bson.M)
	if !ok {
		t.Fatalf("expected $expr, got %v", f)
	}
	lt, ok := expr["$lt"].(bson.A)
	if !ok || len(lt) != 2 || lt[1] != "2024-03-01" {
		t.Fatalf("expected $lt against the cutoff, got %v", expr)
	}
	if _, ok := f["date"]; !ok {
		t.Fatal("expected malformed dates to be excluded by a regex")
	}
}

func TestDateRangeFilterOpenBounds(t *testing.T) {
	if f := DateRangeFilter("", ""); len(f) != 0 {
		t.Fatalf("expected empty filter, got %v", f)
	}
	f := DateRangeFilter("2024-01-01", "")
	and := f["$expr"].(bson.M)["$and"].(bson.A)
	if len(and) != 1 {
		t.Fatalf("expected one bound, got %v", and)
	}
}

func TestTimesheetQueryCombinesFields(t *testing.T) {
	q := timesheetQuery(TimesheetFilter{Pin: "1234", From: "2024-01-01", To: "2024-01-31"})
	if q["pin"] != "1234" {
		t.Fatalf("expected pin filter, got %v", q)
	}
	if _, ok := q["$expr"]; !ok {
		t.Fatalf("expected date range expression, got %v", q)
	}
}

func TestSortTimesheetsByDayThenTime(t *testing.T) {
	rows := []models.Timesheet{
		{Date: "02-01-2024", Time: "08:00"},
		{Date: "31-12-2023", Time: "17:00"},
		{Date: "02-01-2024", Time: "07:30"},
		{Date: "01-02-2023", Time: "09:00"},
	}
	SortTimesheets(rows)

	want := []string{"01-02-2023 09:00", "31-12-2023 17:00", "02-01-2024 07:30", "02-01-2024 08:00"}
	for i, r := range rows {
		if got := r.Date + " " + r.Time; got != want[i] {
			t.Fatalf("position %d: expected %s, got %s", i, want[i], got)
		}
	}
}
