package store

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/obsidianstack/sensorfusion/pkg/types"
)

// fill appends n readings named test1..testN to group g at time t.
func fill(t *testing.T, s *Store, g types.Group, n, tm int) {
	t.Helper()
	for i := 1; i <= n; i++ {
		if _, err := s.Upsert(g, fmt.Sprintf("test%d", i), tm, float64(i*10)); err != nil {
			t.Fatalf("Upsert test%d: %v", i, err)
		}
	}
}

func names(rs []types.Reading) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Name
	}
	return out
}

func TestUpsert_AppendsThenUpdatesInPlace(t *testing.T) {
	s := New()
	fill(t, s, types.Valid, 6, 10)
	if got := s.Count(types.Valid); got != 6 {
		t.Fatalf("Count after insert: got %d, want 6", got)
	}

	for i := 1; i <= 6; i++ {
		name := fmt.Sprintf("test%d", i)
		if _, err := s.Upsert(types.Valid, name, 13, float64(i*11)); err != nil {
			t.Fatalf("Upsert %s: %v", name, err)
		}
		r, ok := s.Get(types.Valid, name)
		if !ok {
			t.Fatalf("Get %s: not found", name)
		}
		if r.Time != 13 || r.Value != float64(i*11) {
			t.Errorf("%s: got time=%d value=%v, want 13/%v", name, r.Time, r.Value, float64(i*11))
		}
	}
	if got := s.Count(types.Valid); got != 6 {
		t.Errorf("Count after update: got %d, want 6", got)
	}
}

func TestUpsert_Idempotent(t *testing.T) {
	s := New()
	for i := 0; i < 2; i++ {
		if _, err := s.Upsert(types.Valid, "sens1", 540, 10); err != nil {
			t.Fatalf("Upsert: %v", err)
		}
	}
	if got := s.Count(types.Valid); got != 1 {
		t.Errorf("Count: got %d, want 1", got)
	}
	g, r, ok := s.Find("sens1")
	if !ok || g != types.Valid || r.Value != 10 || r.Time != 540 {
		t.Errorf("Find: got (%v, %+v, %v)", g, r, ok)
	}
}

func TestUpsert_UnknownGroup(t *testing.T) {
	s := New()
	_, err := s.Upsert(types.Group(7), "x", 0, 0)
	if !errors.Is(err, ErrUnknownGroup) {
		t.Fatalf("err: got %v, want ErrUnknownGroup", err)
	}
}

func TestFind_ScansInGroupOrder(t *testing.T) {
	s := New()
	s.Upsert(types.Stuck, "a", 1, 1)
	s.Upsert(types.OutOfRange, "b", 2, 2)

	g, r, ok := s.Find("b")
	if !ok || g != types.OutOfRange || r.Time != 2 {
		t.Errorf("Find(b): got (%v, %+v, %v)", g, r, ok)
	}
	g, _, ok = s.Find("a")
	if !ok || g != types.Stuck {
		t.Errorf("Find(a): got (%v, %v)", g, ok)
	}
	if _, _, ok := s.Find("missing"); ok {
		t.Error("Find(missing): expected false")
	}
}

func TestRemove_HeadInteriorTail(t *testing.T) {
	s := New()
	fill(t, s, types.Valid, 6, 10)

	steps := []struct {
		remove string
		want   []string
	}{
		{"test4", []string{"test1", "test2", "test3", "test5", "test6"}},
		{"test6", []string{"test1", "test2", "test3", "test5"}},
		{"test1", []string{"test2", "test3", "test5"}},
		{"test2", []string{"test3", "test5"}},
		{"test3", []string{"test5"}},
		{"test5", []string{}},
	}
	for _, st := range steps {
		if err := s.Remove(types.Valid, st.remove); err != nil {
			t.Fatalf("Remove %s: %v", st.remove, err)
		}
		got := names(s.Snapshot(types.Valid))
		if strings.Join(got, ",") != strings.Join(st.want, ",") {
			t.Errorf("after removing %s: got %v, want %v", st.remove, got, st.want)
		}
	}
	if s.Count(types.Valid) != 0 {
		t.Errorf("Count: got %d, want 0", s.Count(types.Valid))
	}
}

func TestRemove_Missing(t *testing.T) {
	s := New()
	if err := s.Remove(types.Valid, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err: got %v, want ErrNotFound", err)
	}
}

func TestTransfer_MovesReading(t *testing.T) {
	s := New()
	fill(t, s, types.Valid, 6, 13)

	if err := s.Transfer(types.Valid, types.OutOfRange, "test3"); err != nil {
		t.Fatalf("Transfer: %v", err)
	}
	if _, ok := s.Get(types.Valid, "test3"); ok {
		t.Error("test3 still in valid group")
	}
	r, ok := s.Get(types.OutOfRange, "test3")
	if !ok || r.Value != 30 || r.Time != 13 {
		t.Errorf("test3 in out_of_range: got (%+v, %v)", r, ok)
	}
	if s.Count(types.Valid) != 5 || s.Count(types.OutOfRange) != 1 {
		t.Errorf("counts: valid=%d oor=%d, want 5/1", s.Count(types.Valid), s.Count(types.OutOfRange))
	}

	if err := s.Remove(types.OutOfRange, "test3"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if s.Count(types.OutOfRange) != 0 {
		t.Errorf("out_of_range count: got %d, want 0", s.Count(types.OutOfRange))
	}
}

func TestTransfer_Missing(t *testing.T) {
	s := New()
	err := s.Transfer(types.Valid, types.Stuck, "ghost")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err: got %v, want ErrNotFound", err)
	}
	if s.Len() != 0 {
		t.Errorf("Len: got %d, want 0", s.Len())
	}
}

func TestSnapshot_IsACopy(t *testing.T) {
	s := New()
	s.Upsert(types.Valid, "a", 1, 1)
	snap := s.Snapshot(types.Valid)
	snap[0].Value = 99

	r, _ := s.Get(types.Valid, "a")
	if r.Value != 1 {
		t.Errorf("store mutated through snapshot: value=%v", r.Value)
	}
}

func TestTruncateName(t *testing.T) {
	long := strings.Repeat("x", types.MaxNameLen+10)
	if got := TruncateName(long); len(got) != types.MaxNameLen {
		t.Errorf("ascii: got len %d, want %d", len(got), types.MaxNameLen)
	}

	// A two-byte rune straddling the limit must be dropped whole.
	multi := strings.Repeat("x", types.MaxNameLen-1) + "é"
	got := TruncateName(multi)
	if len(got) != types.MaxNameLen-1 {
		t.Errorf("utf8: got len %d, want %d", len(got), types.MaxNameLen-1)
	}

	s := New()
	s.Upsert(types.Valid, long, 0, 1)
	if _, ok := s.Get(types.Valid, long); !ok {
		t.Error("Get with the untruncated name should find the truncated entry")
	}
}
