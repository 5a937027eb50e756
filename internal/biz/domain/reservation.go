package domain

// Reservation is an active booking returned by the guest-messaging gateway
type Reservation struct {
	ReservationID int64
	GuestName     string
	ApartmentID   int64
	PropertyName  string
	Arrival       string // ISO date
	Departure     string // ISO date
}

// GuestMessage is one message in a reservation's conversation thread
type GuestMessage struct {
	MessageID string
	Subject   string
	Body      string
}
