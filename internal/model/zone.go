package model

import (
	"time"

	"github.com/evacgrid/backend/internal/geo"
)

// Zone is a declared danger area. A nil EndedAt means the zone is still in
// effect and participates in membership evaluation.
type Zone struct {
	ID              uint          `gorm:"primarykey" json:"id"`
	Name            string        `gorm:"not null" json:"name"`
	StartedAt       time.Time     `gorm:"not null" json:"startedAt"`
	EndedAt         *time.Time    `json:"endedAt"`
	EmergencyTypeID uint          `gorm:"not null" json:"emergencyTypeId"`
	EmergencyType   EmergencyType `json:"emergencyType"`
	Latitude        float64       `gorm:"not null" json:"latitude"`
	Longitude       float64       `gorm:"not null" json:"longitude"`
	Radius          float64       `gorm:"not null" json:"radius"`
}

func (z Zone) Active() bool {
	return z.EndedAt == nil
}

func (z Zone) Center() geo.Point {
	return geo.Point{Latitude: z.Latitude, Longitude: z.Longitude}
}
