package models

import "time"

// Event describes an event together with the QR code image the server generated for it
type Event struct {
	// Internal ID - assigned by the server
	ID int64 `db:"id" json:"id"`
	// Name of the event
	Name string `db:"name" json:"name"`
	// A little description of the event
	Description string `db:"description" json:"description"`
	// The calendar day the event takes place on
	Date Date `db:"date" json:"date"`
	// URI of the QR code image representing this event
	QRCode string `db:"qrCode" json:"qr_code"`
	// Creation date of this entry
	CreatedAt time.Time `db:"createdAt" json:"-"`
	// Date of the last update of this entry
	UpdatedAt time.Time `db:"updatedAt" json:"-"`
}

// NewEventRequest is the payload sent to the server when a new event should be created
type NewEventRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Date        Date   `json:"date"`
}
