package model

import (
	"time"

	"github.com/google/uuid"
)

type ReconciliationSource string

const (
	SourceSale     ReconciliationSource = "sale"
	SourceMovement ReconciliationSource = "movement"
)

// StockReconciliation records a stock adjustment that needs a human.
// When Applied is false the change never reached the stock and someone
// has to apply Delta by hand. When Applied is true the change did land
// (Delta is zero) but could not be re-read or clamped, so the stock only
// needs checking. Either way the row is then marked resolved.
type StockReconciliation struct {
	BaseModel
	ProductID  uuid.UUID            `gorm:"type:uuid;index;not null" json:"product_id"`
	Source     ReconciliationSource `gorm:"type:varchar(16);not null" json:"source"`
	SourceID   uuid.UUID            `gorm:"type:uuid;index;not null" json:"source_id"`
	Delta      int                  `gorm:"not null" json:"delta"`
	Applied    bool                 `gorm:"not null" json:"applied"`
	Reason     string               `gorm:"type:text" json:"reason"`
	ResolvedAt *time.Time           `gorm:"index" json:"resolved_at,omitempty"`
	ResolvedBy string               `gorm:"type:varchar(64)" json:"resolved_by,omitempty"`
}

func (r *StockReconciliation) IsResolved() bool { return r.ResolvedAt != nil }
