package srs

import (
	"reflect"
	"testing"
	"time"
)

func queueCard(id string, state State, due time.Time) Card {
	return Card{ID: id, State: state, Due: due}
}

func TestDueItemsExcludesFutureAndSuspended(t *testing.T) {
	now := testNow
	cards := []Card{
		queueCard("due", Review, now.Add(-time.Hour)),
		queueCard("exactly-now", Review, now),
		queueCard("future", Review, now.Add(time.Minute)),
		queueCard("suspended", Suspended, now.Add(-time.Hour)),
	}
	got := DueItems(cards, now)
	want := []string{"due", "exactly-now"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DueItems = %v, want %v", got, want)
	}
}

func TestDueItemsOrderedByDueTime(t *testing.T) {
	now := testNow
	cards := []Card{
		queueCard("c", Review, now.Add(-time.Hour)),
		queueCard("a", Review, now.Add(-3*time.Hour)),
		queueCard("b", Review, now.Add(-2*time.Hour)),
	}
	got := DueItems(cards, now)
	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DueItems = %v, want %v", got, want)
	}
}

func TestDueItemsTieBreakOnState(t *testing.T) {
	now := testNow
	due := now.Add(-time.Hour)
	cards := []Card{
		queueCard("new", New, due),
		queueCard("review", Review, due),
		queueCard("learning", Learning, due),
		queueCard("relearning", Relearning, due),
	}
	got := DueItems(cards, now)
	// Same due time: Learning/Relearning first, then Review, then New.
	// Within a priority class, ids break the tie.
	want := []string{"learning", "relearning", "review", "new"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DueItems = %v, want %v", got, want)
	}
}

func TestDueItemsTieBreakOnID(t *testing.T) {
	now := testNow
	due := now.Add(-time.Hour)
	cards := []Card{
		queueCard("z", Review, due),
		queueCard("a", Review, due),
		queueCard("m", Review, due),
	}
	got := DueItems(cards, now)
	want := []string{"a", "m", "z"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DueItems = %v, want %v", got, want)
	}
}

func TestDueItemsEmpty(t *testing.T) {
	if got := DueItems(nil, testNow); len(got) != 0 {
		t.Errorf("DueItems(nil) = %v, want empty", got)
	}
}

func TestDueItemsDoesNotMutateInput(t *testing.T) {
	now := testNow
	cards := []Card{
		queueCard("b", Review, now.Add(-time.Hour)),
		queueCard("a", Review, now.Add(-2*time.Hour)),
	}
	DueItems(cards, now)
	if cards[0].ID != "b" || cards[1].ID != "a" {
		t.Error("DueItems should not reorder the caller's slice")
	}
}
