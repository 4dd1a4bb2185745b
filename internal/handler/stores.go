package handler

import (
	"context"

	"github.com/iliyamo/theater-seat-booking/internal/catalog"
	"github.com/iliyamo/theater-seat-booking/internal/model"
	"github.com/iliyamo/theater-seat-booking/internal/queue"
	"github.com/iliyamo/theater-seat-booking/internal/repository"
	"github.com/iliyamo/theater-seat-booking/internal/wire"
)

// EventStore is implemented by *repository.EventRepo.
type EventStore interface {
	List(ctx context.Context) ([]model.Event, error)
	GetByID(ctx context.Context, id uint64) (*model.Event, error)
	Default(ctx context.Context) (*model.Event, error)
}

// SeatStore is implemented by *repository.SeatRepo.
type SeatStore interface {
	ListByEvent(ctx context.Context, eventID uint64) ([]model.Seat, error)
	BookedIDs(ctx context.Context, eventID uint64) ([]uint64, error)
}

// BookingStore is implemented by *repository.BookingRepo.
type BookingStore interface {
	Book(ctx context.Context, b *model.Booking, seatIDs []uint64) ([]model.Seat, error)
	GetByReference(ctx context.Context, ref string) (*repository.BookingDetail, error)
}

// Broadcaster is implemented by *hub.Hub.
type Broadcaster interface {
	BroadcastSeats(ids []catalog.SeatID) int
}

// EventPublisher is implemented by *service.Publisher.
type EventPublisher interface {
	PublishBookingConfirmed(ctx context.Context, ev queue.BookingConfirmedEvent) error
}

func bookedSet(ids []uint64) wire.BookedSet {
	set := make(wire.BookedSet, len(ids))
	for _, id := range ids {
		set[catalog.SeatID(id)] = true
	}
	return set
}
