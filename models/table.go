package models

// TableStatus is the availability state of a physical table. It is only
// mutated through the table repository's claim/release operations.
type TableStatus string

const (
	TableFree      TableStatus = "free"
	TableRequested TableStatus = "requested"
	TableReserved  TableStatus = "reserved"
)

// Table represents a physical table inside a restaurant. Tables are created
// and deleted by restaurant management; this service only drives the status
// lifecycle.
type Table struct {
	ID           string      `bson:"id" json:"id"`
	RestaurantID string      `bson:"restaurantId" json:"restaurantId"`
	Seats        int         `bson:"seats" json:"seats"`
	Status       TableStatus `bson:"status" json:"status"`
}
