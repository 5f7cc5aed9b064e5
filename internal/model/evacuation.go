package model

import "time"

// Evacuation records that one user is currently routed from a zone toward a
// center. The composite unique index closes the check-then-create race: two
// concurrent location updates for the same user entering the same zone can
// never produce two rows.
type Evacuation struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	CreatedAt   time.Time `json:"createdAt"`
	StartZoneID *uint     `gorm:"uniqueIndex:idx_evacuations_user_zone" json:"startZoneId"`
	EndCenterID uint      `gorm:"not null" json:"endCenterId"`
	UserID      uint      `gorm:"not null;uniqueIndex:idx_evacuations_user_zone" json:"userId"`
}
