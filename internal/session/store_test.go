package session

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/histweather/histweather/internal/address"
	"github.com/histweather/histweather/internal/geo"
)

type stubGeocoder struct{}

func (stubGeocoder) Name() string { return "stub" }

func (stubGeocoder) Search(context.Context, string, *geo.Coordinate) ([]address.Candidate, error) {
	return nil, nil
}

type failingGeocoder struct{}

func (failingGeocoder) Name() string { return "failing" }

func (failingGeocoder) Search(context.Context, string, *geo.Coordinate) ([]address.Candidate, error) {
	return nil, errors.New("upstream down")
}

// logBuffer makes log output from the searcher goroutine safe to read.
type logBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (lb *logBuffer) Write(p []byte) (int, error) {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	return lb.b.Write(p)
}

func (lb *logBuffer) String() string {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	return lb.b.String()
}

func TestStoreCreateAndGet(t *testing.T) {
	st := NewStore(stubGeocoder{}, time.Minute)

	s := st.Create(nil)
	if s.ID == "" {
		t.Fatal("session id not assigned")
	}

	got, err := st.Get(s.ID)
	if err != nil || got != s {
		t.Fatalf("Get(%q) = (%v, %v)", s.ID, got, err)
	}

	if _, err := st.Get("missing"); err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStorePurgeExpired(t *testing.T) {
	st := NewStore(stubGeocoder{}, 10*time.Millisecond)

	stale := st.Create(nil)
	time.Sleep(25 * time.Millisecond)
	fresh := st.Create(nil)

	if removed := st.PurgeExpired(); removed != 1 {
		t.Fatalf("purged %d sessions, want 1", removed)
	}
	if st.Len() != 1 {
		t.Fatalf("store holds %d sessions, want 1", st.Len())
	}
	if _, err := st.Get(stale.ID); err != ErrNotFound {
		t.Errorf("stale session still present")
	}
	if _, err := st.Get(fresh.ID); err != nil {
		t.Errorf("fresh session removed: %v", err)
	}
}

func TestStoreSessionReportsLookupFailure(t *testing.T) {
	buf := &logBuffer{}
	log.SetOutput(buf)
	defer log.SetOutput(os.Stderr)

	st := NewStore(failingGeocoder{}, time.Minute, address.WithDebounce(5*time.Millisecond))
	s := st.Create(nil)
	defer s.Searcher.Close()

	s.Searcher.Input("700 Pine Street")

	if _, ok := s.Await(500 * time.Millisecond); ok {
		t.Error("failed lookup produced results")
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if strings.Contains(buf.String(), "address lookup failed") {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("lookup failure never logged, output: %q", buf.String())
}

func TestSessionMailboxKeepsLatest(t *testing.T) {
	st := NewStore(stubGeocoder{}, time.Minute)
	s := st.Create(nil)

	older := []address.Candidate{{DisplayName: "old"}}
	newer := []address.Candidate{{DisplayName: "new"}}

	s.push(older)
	s.push(newer)

	got, ok := s.Await(time.Second)
	if !ok {
		t.Fatal("mailbox empty")
	}
	if len(got) != 1 || got[0].DisplayName != "new" {
		t.Errorf("mailbox delivered %v, want the newest emission", got)
	}
}

func TestAwaitTimesOutWhenIdle(t *testing.T) {
	st := NewStore(stubGeocoder{}, time.Minute)
	s := st.Create(nil)

	if _, ok := s.Await(10 * time.Millisecond); ok {
		t.Error("Await returned without an emission")
	}
}
