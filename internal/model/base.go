package model

import (
	"time"
)

// Base contains common fields for all stored documents
type Base struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// JSONMap represents a generic JSON object
type JSONMap map[string]interface{}
