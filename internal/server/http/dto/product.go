package dto

import "time"

// ProductRequest describes a catalog entry create/update payload. Price is
// minor currency units.
type ProductRequest struct {
	Name         string `json:"name"`
	Brand        string `json:"brand"`
	Category     string `json:"category"`
	Description  string `json:"description"`
	Price        int64  `json:"price"`
	CountInStock int32  `json:"count_in_stock"`
	Image        string `json:"image"`
}

// ProductResponse is the public view of a catalog entry.
type ProductResponse struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Brand        string    `json:"brand"`
	Category     string    `json:"category"`
	Description  string    `json:"description"`
	Price        int64     `json:"price"`
	CountInStock int32     `json:"count_in_stock"`
	Image        string    `json:"image"`
	CreatedAt    time.Time `json:"created_at"`
}

// ProductListResponse is one catalog page.
type ProductListResponse struct {
	Products []ProductResponse `json:"products"`
	Page     int               `json:"page"`
	Pages    int               `json:"pages"`
	Total    int               `json:"total"`
}
