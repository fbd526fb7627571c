package dbmysql

import (
	"time"
)

type User struct {
	UserID    uint64    `gorm:"primaryKey;column:user_id;autoIncrement" json:"user_id"`
	Username  string    `gorm:"column:username;uniqueIndex;size:50;not null" json:"username"`
	Age       int       `gorm:"column:age;not null" json:"age"`
	Gender    string    `gorm:"column:gender;type:enum('male','female','other');not null" json:"gender"`
	Country   string    `gorm:"column:country;size:100;not null" json:"country"`
	Status    string    `gorm:"column:status;type:enum('online','offline');default:'online';index" json:"status"`
	LastSeen  time.Time `gorm:"column:last_seen;index" json:"last_seen"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
