package models

// Lobby 对局表，State 保存对局聚合的 JSON 快照
type Lobby struct {
	BaseModel
	Name        string `gorm:"size:64;not null" json:"name"`
	MinPlayers  int    `gorm:"not null" json:"min_players"`
	MaxPlayers  int    `gorm:"not null" json:"max_players"`
	Started     bool   `gorm:"index;default:false" json:"started"`
	HostID      uint   `gorm:"index" json:"host_id"`
	PlayerCount int    `gorm:"default:0" json:"player_count"`
	CurrentTurn int    `gorm:"default:0" json:"current_turn"`
	State       string `gorm:"type:text" json:"-"`
}

// TableName 指定表名
func (Lobby) TableName() string {
	return "lobbies"
}
