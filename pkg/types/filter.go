package types

import "time"

// Sort keys accepted by Filter.OrderBy.
const (
	OrderByAdded     = "added"
	OrderByName      = "name"
	OrderByDirectory = "directory"
)

// Filter narrows a project query. The zero value matches every project in
// creation order.
type Filter struct {
	NameContains    string    // case-insensitive substring of Name
	DirectoryPrefix string    // prefix of Directory
	AddedAfter      time.Time // inclusive lower bound, zero means unbounded
	AddedBefore     time.Time // exclusive upper bound, zero means unbounded
	OrderBy         string    // one of the OrderBy constants, empty means added
	Descending      bool
	Limit           int // 0 means no limit
	Offset          int
}

// Validate returns ErrInvalidFilter if the filter cannot be applied.
func (f Filter) Validate() error {
	switch f.OrderBy {
	case "", OrderByAdded, OrderByName, OrderByDirectory:
	default:
		return ErrInvalidFilter
	}
	if f.Limit < 0 || f.Offset < 0 {
		return ErrInvalidFilter
	}
	if !boundInRange(f.AddedAfter) || !boundInRange(f.AddedBefore) {
		return ErrInvalidFilter
	}
	return nil
}

// boundInRange reports whether t is zero or has a four-digit year in UTC.
func boundInRange(t time.Time) bool {
	if t.IsZero() {
		return true
	}
	y := t.UTC().Year()
	return y >= 0 && y <= 9999
}
