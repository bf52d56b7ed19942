package engine

// Source is the selection surface the selector needs from the store.
type Source interface {
	NextPendingID(ceiling int) (int64, bool, error)
	NextVacantID() (int64, bool, error)
}

// Selector decides the next archived message to attempt. Retried work drains
// first so a long archive can't starve stuck items; only then does fresh
// ("vacant") work start, oldest message first.
type Selector struct {
	src     Source
	ceiling int
}

// NewSelector creates a selector with the given retry ceiling.
func NewSelector(src Source, ceiling int) *Selector {
	return &Selector{src: src, ceiling: ceiling}
}

// Next returns the next old message id to attempt, or false when both queues
// are exhausted and the run is done.
func (s *Selector) Next() (int64, bool, error) {
	id, ok, err := s.src.NextPendingID(s.ceiling)
	if err != nil || ok {
		return id, ok, err
	}
	return s.src.NextVacantID()
}
