package index

import "fmt"

// DimensionMismatchError reports a disagreement between the dimension an
// index carries and the dimension the configured embedder declares. It is
// a fatal configuration error: vectors from different models must never
// be mixed, truncated or padded.
type DimensionMismatchError struct {
	Want int
	Got  int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("vector dimension mismatch: index has %d, embedder declares %d", e.Got, e.Want)
}

// UnavailableError reports a missing or unreadable persisted index. No
// queries can be answered without an index, so it is fatal at startup.
type UnavailableError struct {
	Path string
	Err  error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("index unavailable at %s: %v", e.Path, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// DuplicateEntryError reports two index entries sharing a chunk id.
type DuplicateEntryError struct {
	ID string
}

func (e *DuplicateEntryError) Error() string {
	return fmt.Sprintf("duplicate chunk id in index: %s", e.ID)
}
