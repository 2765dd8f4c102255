package client

import "time"

// Table: clients. Managed by the admin screens; read-only here.
type Client struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"column:name;size:255;not null" json:"name"`
	Address   string    `gorm:"column:address;type:text" json:"address"`
	TaxID     string    `gorm:"column:tax_id;size:32" json:"tax_id,omitempty"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Client) TableName() string { return "clients" }

// Table: branches. A regional sub-scope of a client.
type Branch struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ClientID  uint64    `gorm:"column:client_id;not null;index" json:"client_id"`
	Name      string    `gorm:"column:name;size:255;not null" json:"name"`
	Address   string    `gorm:"column:address;type:text" json:"address"`
	TaxID     string    `gorm:"column:tax_id;size:32" json:"tax_id,omitempty"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Branch) TableName() string { return "branches" }
