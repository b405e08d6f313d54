package optimizer

import (
	"testing"
	"time"

	"github.com/revisehq/revise/srs"
)

var datasetNow = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func TestFormatRevlogsEmpty(t *testing.T) {
	if got := formatRevlogs(nil); got != nil {
		t.Errorf("formatRevlogs(nil) = %v, want nil", got)
	}
}

func TestFormatRevlogsGroupsAndSorts(t *testing.T) {
	// Logs arrive out of order and interleaved across items.
	logs := []srs.ReviewLog{
		{ItemID: "a", Rating: srs.Again, ReviewedAt: datasetNow.Add(5 * 24 * time.Hour)},
		{ItemID: "b", Rating: srs.Easy, ReviewedAt: datasetNow},
		{ItemID: "a", Rating: srs.Good, ReviewedAt: datasetNow},
	}
	data := formatRevlogs(logs)

	if len(data) != 2 {
		t.Fatalf("len(data) = %d, want 2", len(data))
	}
	a := data["a"]
	if len(a) != 2 {
		t.Fatalf("len(a) = %d, want 2", len(a))
	}
	if a[0].rating != srs.Good || a[1].rating != srs.Again {
		t.Error("reviews for an item should be sorted by review time")
	}
	if a[0].elapsedDays != 0 {
		t.Errorf("first review elapsed = %f, want 0", a[0].elapsedDays)
	}
	assertFloat(t, "second review elapsed", a[1].elapsedDays, 5.0)
}

func TestFormatRevlogsLabels(t *testing.T) {
	logs := []srs.ReviewLog{
		{ItemID: "a", Rating: srs.Again, ReviewedAt: datasetNow},
		{ItemID: "b", Rating: srs.Hard, ReviewedAt: datasetNow},
		{ItemID: "c", Rating: srs.Good, ReviewedAt: datasetNow},
		{ItemID: "d", Rating: srs.Easy, ReviewedAt: datasetNow},
	}
	data := formatRevlogs(logs)
	if got := data["a"][0].label; got != 0 {
		t.Errorf("Again label = %f, want 0", got)
	}
	for _, id := range []string{"b", "c", "d"} {
		if got := data[id][0].label; got != 1 {
			t.Errorf("%s label = %f, want 1", id, got)
		}
	}
}

func TestCountCrossDayReviews(t *testing.T) {
	logs := []srs.ReviewLog{
		{ItemID: "a", Rating: srs.Good, ReviewedAt: datasetNow},
		// Same-day second review: elapsed < 1, not cross-day.
		{ItemID: "a", Rating: srs.Good, ReviewedAt: datasetNow.Add(6 * time.Hour)},
		// Cross-day reviews.
		{ItemID: "a", Rating: srs.Good, ReviewedAt: datasetNow.Add(3 * 24 * time.Hour)},
		{ItemID: "a", Rating: srs.Again, ReviewedAt: datasetNow.Add(10 * 24 * time.Hour)},
		// Another item: only its first review, never cross-day.
		{ItemID: "b", Rating: srs.Easy, ReviewedAt: datasetNow},
	}
	if got := countCrossDayReviews(formatRevlogs(logs)); got != 2 {
		t.Errorf("countCrossDayReviews = %d, want 2", got)
	}
}
