// Package reconcile applies authoritative booking state from the server
// onto the local seat catalog.
//
// Both operations only ever move seats towards booked. A seat the server
// has reported as booked is never made available again, and the server is
// assumed never to report that transition either.
package reconcile

import (
	"github.com/iliyamo/theater-seat-booking/internal/catalog"
)

// Change reports what an apply did to the catalog.
type Change struct {
	// Booked are the seats that moved to booked, in input order.
	Booked []catalog.SeatID
	// Deselected are the visitor's selected seats that were taken by
	// someone else. The booking summary must be recomputed when non-empty.
	Deselected []catalog.SeatID
	// Unknown ids are not in the catalog and were ignored.
	Unknown []catalog.SeatID
}

// Empty reports whether the apply changed nothing.
func (c Change) Empty() bool { return len(c.Booked) == 0 }

// SelectionChanged reports whether the visitor lost any selected seat.
func (c Change) SelectionChanged() bool { return len(c.Deselected) > 0 }

// Reconciler merges snapshot and incremental updates into a catalog.
type Reconciler struct {
	cat *catalog.Catalog
}

// New returns a reconciler for cat.
func New(cat *catalog.Catalog) *Reconciler {
	return &Reconciler{cat: cat}
}

// ApplySnapshot forces every known seat in booked to booked, including
// seats the visitor had selected. Seats missing from the set are left as
// they are: absence asserts nothing.
func (r *Reconciler) ApplySnapshot(booked []catalog.SeatID) Change {
	return r.apply(booked, false)
}

// ApplyIncremental books the given seats and marks each newly booked seat
// with the just-booked flash. The seat is booked immediately; the flash is
// presentation only and the caller clears it. Ids already booked are
// skipped, so replaying an update is a no-op.
func (r *Reconciler) ApplyIncremental(ids []catalog.SeatID) Change {
	return r.apply(ids, true)
}

func (r *Reconciler) apply(ids []catalog.SeatID, flash bool) Change {
	var ch Change
	seen := make(map[catalog.SeatID]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		seat, ok := r.cat.Get(id)
		if !ok {
			ch.Unknown = append(ch.Unknown, id)
			continue
		}
		if seat.Status == catalog.StatusBooked {
			continue
		}
		if seat.Status == catalog.StatusSelected {
			ch.Deselected = append(ch.Deselected, id)
		}
		r.cat.SetStatus(id, catalog.StatusBooked)
		if flash {
			r.cat.SetJustBooked(id, true)
		}
		ch.Booked = append(ch.Booked, id)
	}
	return ch
}

// Settle clears the just-booked flash on ids.
func (r *Reconciler) Settle(ids []catalog.SeatID) {
	for _, id := range ids {
		r.cat.SetJustBooked(id, false)
	}
}
