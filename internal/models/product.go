package models

import "time"

// Product mirrors an item of the external catalog. ExternalID is the
// catalog's own identifier and the upsert key.
type Product struct {
	ID         ProductID `json:"id" gorm:"primaryKey;autoIncrement"`
	ExternalID int64     `json:"externalId" gorm:"column:external_catalog_id;uniqueIndex;not null"`
	Name       string    `json:"name" gorm:"not null"`
	SellerID   UserID    `json:"sellerId" gorm:"index;not null"`
	UpdatedAt  time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}
