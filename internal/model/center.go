package model

import "github.com/evacgrid/backend/internal/geo"

// Center is a registered safe destination. Read-only from the engine's
// perspective.
type Center struct {
	ID        uint    `gorm:"primarykey" json:"id"`
	Name      string  `gorm:"not null" json:"name"`
	Latitude  float64 `gorm:"not null" json:"latitude"`
	Longitude float64 `gorm:"not null" json:"longitude"`
}

func (c Center) Position() geo.Point {
	return geo.Point{Latitude: c.Latitude, Longitude: c.Longitude}
}
