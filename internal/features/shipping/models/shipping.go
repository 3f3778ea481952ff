package models

import "time"

// ShippingInfo is the delivery address a winner submits for their prize.
// Winners may resubmit; the latest version wins.
type ShippingInfo struct {
	GiveawayID  string    `json:"giveaway_id"`
	UserID      int64     `json:"user_id"`
	FullName    string    `json:"full_name"`
	Phone       string    `json:"phone"`
	Country     string    `json:"country"`
	City        string    `json:"city"`
	AddressLine string    `json:"address_line"`
	PostalCode  string    `json:"postal_code"`
	Comment     string    `json:"comment,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ShippingSubmit represents a winner's address submission.
type ShippingSubmit struct {
	FullName    string `json:"full_name" binding:"required,min=1,max=200"`
	Phone       string `json:"phone" binding:"required,min=5,max=32"`
	Country     string `json:"country" binding:"required,min=2,max=100"`
	City        string `json:"city" binding:"required,min=1,max=100"`
	AddressLine string `json:"address_line" binding:"required,min=1,max=300"`
	PostalCode  string `json:"postal_code" binding:"required,min=2,max=20"`
	Comment     string `json:"comment" binding:"max=500"`
}
