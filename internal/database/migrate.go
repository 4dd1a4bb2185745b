package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema creates the booking tables when they do not exist yet. Seat ids
// are not auto-incremented: they are written by Seed in layout order so
// that the server and the seat map client agree on them.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS events (
		id           BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		name         VARCHAR(200)    NOT NULL,
		description  TEXT            NULL,
		venue        VARCHAR(200)    NOT NULL DEFAULT '',
		starts_at    DATETIME        NOT NULL,
		duration_min INT             NOT NULL DEFAULT 0,
		created_at   DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS seats (
		id          BIGINT UNSIGNED NOT NULL PRIMARY KEY,
		event_id    BIGINT UNSIGNED NOT NULL,
		section     VARCHAR(64)     NOT NULL,
		row_label   VARCHAR(4)      NOT NULL,
		seat_number INT UNSIGNED    NOT NULL,
		seat_code   VARCHAR(16)     NOT NULL,
		is_vip      TINYINT(1)      NOT NULL DEFAULT 0,
		price       INT             NOT NULL DEFAULT 0,
		status      ENUM('available','booked') NOT NULL DEFAULT 'available',
		KEY idx_seats_event_status (event_id, status),
		CONSTRAINT fk_seats_event FOREIGN KEY (event_id) REFERENCES events (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id             BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		reference      VARCHAR(32)     NOT NULL,
		event_id       BIGINT UNSIGNED NOT NULL,
		customer_name  VARCHAR(200)    NOT NULL,
		customer_email VARCHAR(200)    NOT NULL,
		customer_phone VARCHAR(64)     NOT NULL,
		ticket_type    VARCHAR(16)     NOT NULL,
		total_amount   INT             NOT NULL,
		created_at     DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_bookings_reference (reference),
		CONSTRAINT fk_bookings_event FOREIGN KEY (event_id) REFERENCES events (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS booking_seats (
		booking_id BIGINT UNSIGNED NOT NULL,
		seat_id    BIGINT UNSIGNED NOT NULL,
		PRIMARY KEY (booking_id, seat_id),
		UNIQUE KEY uq_booking_seats_seat (seat_id),
		CONSTRAINT fk_booking_seats_booking FOREIGN KEY (booking_id) REFERENCES bookings (id),
		CONSTRAINT fk_booking_seats_seat FOREIGN KEY (seat_id) REFERENCES seats (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate creates any missing table. It is safe to run on every start.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i+1, err)
		}
	}
	return nil
}
