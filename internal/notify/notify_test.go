package notify

import (
	"testing"
	"time"
)

func TestFeed_PostAndRecent(t *testing.T) {
	f := NewFeed(10)
	f.now = func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }

	f.Info("Protein %s renamed to %s", "tau", "MAPT")
	f.Error("Search failed")

	got := f.Recent()
	if len(got) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(got))
	}
	if got[0].Message != "Protein tau renamed to MAPT" || got[0].Level != LevelInfo {
		t.Errorf("first = %+v", got[0])
	}
	if got[1].Level != LevelError || got[1].ID != 2 {
		t.Errorf("second = %+v", got[1])
	}
	if got[0].At != "2024-01-01T00:00:00Z" {
		t.Errorf("At = %q", got[0].At)
	}
}

func TestFeed_Limit(t *testing.T) {
	f := NewFeed(3)
	for i := 0; i < 5; i++ {
		f.Info("n%d", i)
	}

	got := f.Recent()
	if len(got) != 3 {
		t.Fatalf("expected 3 retained, got %d", len(got))
	}
	if got[0].Message != "n2" || got[2].Message != "n4" {
		t.Errorf("retained = %v", got)
	}

	latest, ok := f.Latest()
	if !ok || latest.Message != "n4" {
		t.Errorf("Latest = %+v, %v", latest, ok)
	}
}

func TestFeed_DefaultLimit(t *testing.T) {
	f := NewFeed(0)
	if f.limit != DefaultLimit {
		t.Errorf("limit = %d, want %d", f.limit, DefaultLimit)
	}
	if _, ok := f.Latest(); ok {
		t.Error("Latest on empty feed returned ok")
	}
}

func TestFeed_Subscribe(t *testing.T) {
	f := NewFeed(10)

	var got []string
	unsubscribe := f.Subscribe(func(n Notification) { got = append(got, n.Message) })

	f.Info("one")
	unsubscribe()
	f.Info("two")

	if len(got) != 1 || got[0] != "one" {
		t.Errorf("subscriber saw %v, want [one]", got)
	}
}

func TestFeed_RecentReturnsCopy(t *testing.T) {
	f := NewFeed(10)
	f.Info("original")

	got := f.Recent()
	got[0].Message = "mutated"

	if f.Recent()[0].Message != "original" {
		t.Error("feed mutated through Recent copy")
	}
}
