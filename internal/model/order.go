package model

import (
	"time"

	"concerthub-api/pkg/money"
)

// OrderStatusConfirmed is the only status an order currently takes.
const OrderStatusConfirmed = "Confirmed"

// Order is an immutable record of a completed checkout.
type Order struct {
	ID              string      `json:"id"`
	ConcertID       int         `json:"concert_id"`
	ConcertTitle    string      `json:"concert_title"`
	ConcertDate     string      `json:"concert_date"`
	ConcertLocation string      `json:"concert_location"`
	Quantity        int         `json:"quantity"`
	TotalPrice      money.Price `json:"total_price"`
	CustomerName    string      `json:"customer_name"`
	CustomerEmail   string      `json:"customer_email"`
	OrderDate       time.Time   `json:"order_date"`
	Status          string      `json:"status"`
}

// OrderInput carries the checkout data an order is built from.
type OrderInput struct {
	ConcertID       int
	ConcertTitle    string
	ConcertDate     string
	ConcertLocation string
	Quantity        int
	TotalPrice      money.Price
	CustomerName    string
	CustomerEmail   string
}
