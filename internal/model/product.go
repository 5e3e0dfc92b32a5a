package model

// Product is a catalog record. Category is free text and compared
// case-insensitively.
type Product struct {
	ID          int64   `json:"id" db:"id"`
	Title       string  `json:"title" db:"title"`
	Price       float64 `json:"price" db:"price"`
	Category    string  `json:"category" db:"category"`
	Description string  `json:"description" db:"description"`
	Image       string  `json:"image,omitempty" db:"image"`
}
