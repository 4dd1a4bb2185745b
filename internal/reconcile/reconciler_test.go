package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/theater-seat-booking/internal/catalog"
)

func newCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.Generate(catalog.DefaultLayout())
	require.NoError(t, err)
	return c
}

func status(t *testing.T, c *catalog.Catalog, id catalog.SeatID) catalog.Status {
	t.Helper()
	s, ok := c.Get(id)
	require.True(t, ok)
	return s.Status
}

func TestApplyIncrementalIsIdempotent(t *testing.T) {
	c := newCatalog(t)
	r := New(c)

	first := r.ApplyIncremental([]catalog.SeatID{30, 31})
	assert.Equal(t, []catalog.SeatID{30, 31}, first.Booked)
	snapshot := c.Seats()

	again := r.ApplyIncremental([]catalog.SeatID{30, 31})
	assert.True(t, again.Empty())
	assert.Equal(t, snapshot, c.Seats())
}

func TestApplySnapshotIsMonotonic(t *testing.T) {
	c := newCatalog(t)
	r := New(c)

	r.ApplySnapshot([]catalog.SeatID{3, 4})
	ch := r.ApplySnapshot([]catalog.SeatID{4})
	assert.True(t, ch.Empty())
	assert.Equal(t, catalog.StatusBooked, status(t, c, 3), "absence never un-books")
	assert.Equal(t, catalog.StatusBooked, status(t, c, 4))
	assert.Equal(t, catalog.StatusVIP, status(t, c, 5))
}

func TestApplySnapshotOverridesSelection(t *testing.T) {
	c := newCatalog(t)
	r := New(c)
	require.True(t, c.Select(50))
	require.True(t, c.Select(51))

	ch := r.ApplySnapshot([]catalog.SeatID{50})
	assert.Equal(t, []catalog.SeatID{50}, ch.Deselected)
	assert.Equal(t, catalog.StatusBooked, status(t, c, 50))
	assert.Equal(t, []catalog.SeatID{51}, c.SelectedIDs())

	s, _ := c.Get(50)
	assert.False(t, s.JustBooked, "snapshots do not flash")
}

// A visitor holds C7 and C8 in Standard; a push update books C7 elsewhere.
func TestIncrementalTakesSelectedSeat(t *testing.T) {
	c := newCatalog(t)
	r := New(c)

	var c7, c8 catalog.SeatID
	for _, s := range c.Seats() {
		if s.Section == "Standard" && s.Code == "C7" {
			c7 = s.ID
		}
		if s.Section == "Standard" && s.Code == "C8" {
			c8 = s.ID
		}
	}
	require.NotZero(t, c7)
	require.True(t, c.Select(c7))
	require.True(t, c.Select(c8))

	ch := r.ApplyIncremental([]catalog.SeatID{c7})
	assert.True(t, ch.SelectionChanged())
	assert.Equal(t, []catalog.SeatID{c7}, ch.Deselected)
	assert.Equal(t, []catalog.SeatID{c8}, c.SelectedIDs())

	s, _ := c.Get(c7)
	assert.Equal(t, catalog.StatusBooked, s.Status)
	assert.True(t, s.JustBooked)
	assert.False(t, c.IsSelectable(c7))

	r.Settle(ch.Booked)
	s, _ = c.Get(c7)
	assert.False(t, s.JustBooked)
	assert.Equal(t, catalog.StatusBooked, s.Status)
}

func TestUnknownIDsAreReported(t *testing.T) {
	c := newCatalog(t)
	r := New(c)

	ch := r.ApplyIncremental([]catalog.SeatID{9999, 2, 2})
	assert.Equal(t, []catalog.SeatID{9999}, ch.Unknown)
	assert.Equal(t, []catalog.SeatID{2}, ch.Booked)

	n := c.Counts()
	assert.Equal(t, c.Len(), n.Total())
	assert.Equal(t, 1, n.Booked)
}
