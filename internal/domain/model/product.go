package model

import "time"

// Product is a catalog entry. Price is minor currency units; orders snapshot
// it at creation time.
type Product struct {
	ID           int64
	Name         string
	Brand        string
	Category     string
	Description  string
	Price        int64
	CountInStock int32
	Image        string
	CreatedAt    time.Time
}
