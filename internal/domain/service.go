package domain

import "time"

// Service is an extra purchasable during a stay (breakfast, spa, transfer).
type Service struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Price       float64   `json:"price"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// PopularService is a catalog entry with the number of bookings carrying it.
type PopularService struct {
	Service
	UsageCount int64 `json:"usageCount"`
}
