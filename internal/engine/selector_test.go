package engine

import (
	"errors"
	"testing"
)

// fakeSource scripts the two selection queues.
type fakeSource struct {
	pendingID int64
	pendingOK bool
	vacantID  int64
	vacantOK  bool
	err       error

	seenCeiling int
}

func (f *fakeSource) NextPendingID(ceiling int) (int64, bool, error) {
	f.seenCeiling = ceiling
	return f.pendingID, f.pendingOK, f.err
}

func (f *fakeSource) NextVacantID() (int64, bool, error) {
	return f.vacantID, f.vacantOK, f.err
}

func TestSelectorPrefersPendingWork(t *testing.T) {
	src := &fakeSource{pendingID: 7, pendingOK: true, vacantID: 1, vacantOK: true}
	s := NewSelector(src, 4)

	id, ok, err := s.Next()
	if err != nil {
		t.Fatal(err)
	}
	if !ok || id != 7 {
		t.Errorf("Next() = (%d, %v), want pending id 7", id, ok)
	}
	if src.seenCeiling != 4 {
		t.Errorf("ceiling passed = %d, want 4", src.seenCeiling)
	}
}

func TestSelectorFallsBackToVacantWork(t *testing.T) {
	src := &fakeSource{vacantID: 3, vacantOK: true}
	s := NewSelector(src, 4)

	id, ok, err := s.Next()
	if err != nil {
		t.Fatal(err)
	}
	if !ok || id != 3 {
		t.Errorf("Next() = (%d, %v), want vacant id 3", id, ok)
	}
}

func TestSelectorDoneWhenBothQueuesEmpty(t *testing.T) {
	s := NewSelector(&fakeSource{}, 4)

	_, ok, err := s.Next()
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("Next() = ok, want done")
	}
}

func TestSelectorPropagatesErrors(t *testing.T) {
	src := &fakeSource{err: errors.New("db locked")}
	s := NewSelector(src, 4)

	if _, _, err := s.Next(); err == nil {
		t.Error("Next() expected error")
	}
}
