package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/theater-seat-booking/internal/booking"
	"github.com/iliyamo/theater-seat-booking/internal/catalog"
	"github.com/iliyamo/theater-seat-booking/internal/model"
)

// seedBatch bounds the number of rows per INSERT statement.
const seedBatch = 100

// DefaultEvent is the performance seeded into an empty database.
func DefaultEvent() model.Event {
	return model.Event{
		Name:        "Ultimate Music Experience",
		Description: "Experience an unforgettable night of music with the world's top performers.",
		Venue:       "Grand Arena, Downtown",
		StartsAt:    time.Date(2025, 3, 25, 19, 0, 0, 0, time.UTC),
		DurationMin: 180,
	}
}

// SectionPrice is the list price of a seat in the section: the VIP tier
// for VIP sections, premium for sections named Premium, standard
// otherwise.
func SectionPrice(sec catalog.Section) int {
	switch {
	case sec.VIP:
		return booking.TierVIP.Price()
	case strings.EqualFold(sec.Name, "premium"):
		return booking.TierPremium.Price()
	default:
		return booking.TierStandard.Price()
	}
}

// Seed inserts ev and one seat row per generated catalog seat when the
// events table is empty. It reports whether anything was written.
func Seed(ctx context.Context, db *sql.DB, layout catalog.Layout, ev model.Event) (bool, error) {
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&n); err != nil {
		return false, fmt.Errorf("count events: %w", err)
	}
	if n > 0 {
		return false, nil
	}
	cat, err := catalog.Generate(layout)
	if err != nil {
		return false, err
	}
	prices := make(map[string]int, len(layout.Sections))
	for _, sec := range layout.Sections {
		if !sec.Aisle {
			prices[sec.Name] = SectionPrice(sec)
		}
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	const insEvent = `INSERT INTO events (name, description, venue, starts_at, duration_min) VALUES (?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, insEvent, ev.Name, ev.Description, ev.Venue, ev.StartsAt.UTC(), ev.DurationMin)
	if err != nil {
		return false, fmt.Errorf("insert event: %w", err)
	}
	eventID, err := res.LastInsertId()
	if err != nil {
		return false, err
	}

	seats := cat.Seats()
	for start := 0; start < len(seats); start += seedBatch {
		end := min(start+seedBatch, len(seats))
		query := `INSERT INTO seats (id, event_id, section, row_label, seat_number, seat_code, is_vip, price, status) VALUES `
		args := make([]interface{}, 0, (end-start)*9)
		for i, s := range seats[start:end] {
			if i > 0 {
				query += ","
			}
			query += "(?, ?, ?, ?, ?, ?, ?, ?, ?)"
			args = append(args, uint64(s.ID), eventID, s.Section, s.Row, s.Number, s.Code, s.VIP, prices[s.Section], model.SeatAvailable)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return false, fmt.Errorf("insert seats: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	committed = true
	return true, nil
}
