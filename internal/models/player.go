package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Player 玩家表，Identifier 作为客户端持有的公开标识
type Player struct {
	BaseModel
	Name       string `gorm:"size:64;not null" json:"name"`
	Identifier string `gorm:"uniqueIndex;size:36;not null" json:"identifier"`
}

// TableName 指定表名
func (Player) TableName() string {
	return "players"
}

// BeforeCreate 未指定标识时生成 UUID
func (p *Player) BeforeCreate(tx *gorm.DB) error {
	if p.Identifier == "" {
		p.Identifier = uuid.NewString()
	}
	return nil
}
