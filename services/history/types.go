package history

import "github.com/Janrichter12345/freetables/models"

// Entry is one device-cached reservation row. Entries are created
// optimistically at request time, so the denormalized fields may be stale or
// empty until a server poll fills them in. Timestamps are unix milliseconds
// to match what the clients store.
type Entry struct {
	ID             string                   `json:"id"`
	RestaurantName string                   `json:"restaurantName"`
	Seats          int                      `json:"seats"`
	EtaMinutes     int                      `json:"etaMinutes"`
	ReservedFor    string                   `json:"reservedFor"`
	Status         models.ReservationStatus `json:"status"`
	CreatedAt      int64                    `json:"createdAt"`
	AcceptedAt     int64                    `json:"acceptedAt,omitempty"`
}

// DateGroup is one calendar day of past reservations, newest first.
type DateGroup struct {
	Date  string  `json:"date"`
	Items []Entry `json:"items"`
}

// View is the display partition of a unified history.
type View struct {
	Current []Entry     `json:"current"`
	Past    []DateGroup `json:"past"`
}
