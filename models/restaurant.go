package models

// Restaurant is the slice of the restaurant record this service needs:
// the confirmation call goes to Phone, and Name is denormalized into
// status responses.
type Restaurant struct {
	ID    string `bson:"id" json:"id"`
	Name  string `bson:"name" json:"name"`
	Phone string `bson:"phone" json:"phone"`
}
