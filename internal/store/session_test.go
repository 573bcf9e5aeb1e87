package store

import (
	"errors"
	"testing"
	"time"
)

func TestSessions_Lifecycle(t *testing.T) {
	repo := newTestStore(t).Sessions()
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	if err := repo.Start("s-1", start); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	s, err := repo.Get("s-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !s.StartedAt.Equal(start) || s.EndedAt != nil || s.Frames != 0 {
		t.Errorf("running session = %+v", s)
	}

	end := start.Add(90 * time.Second)
	if err := repo.Finish("s-1", end, 2700, "quit gesture"); err != nil {
		t.Fatalf("Finish() error = %v", err)
	}

	s, err = repo.Get("s-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if s.EndedAt == nil || !s.EndedAt.Equal(end) {
		t.Errorf("EndedAt = %v, want %v", s.EndedAt, end)
	}
	if s.Frames != 2700 || s.Reason != "quit gesture" {
		t.Errorf("finished session = %+v", s)
	}
}

func TestSessions_NotFound(t *testing.T) {
	repo := newTestStore(t).Sessions()

	if _, err := repo.Get("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
	if err := repo.Finish("nope", time.Now(), 0, ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("Finish() error = %v, want ErrNotFound", err)
	}
}

func TestSessions_Recent(t *testing.T) {
	repo := newTestStore(t).Sessions()
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	for i, id := range []string{"a", "b", "c"} {
		if err := repo.Start(id, base.Add(time.Duration(i)*time.Hour)); err != nil {
			t.Fatal(err)
		}
	}

	recent, err := repo.Recent(2)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(recent) != 2 || recent[0].ID != "c" || recent[1].ID != "b" {
		t.Errorf("Recent(2) = %v, want [c b]", recent)
	}
}
