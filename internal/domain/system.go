package domain

import "time"

type SysConfig struct {
	ID        int64     `json:"id,string" form:"id"`
	Sort      int       `json:"sort" form:"sort"`
	Type      string    `gorm:"index" json:"type" form:"type"`
	Name      string    `gorm:"index" json:"name" form:"name"`
	Value     string    `json:"value" form:"value"`
	Remark    string    `json:"remark" form:"remark"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName Specify table name
func (SysConfig) TableName() string {
	return "sys_config"
}

// AdminAudit records privileged mutations: role changes, admin provisioning,
// pending product review and order deletion.
type AdminAudit struct {
	ID        int64     `json:"id,string"`
	ActorID   int64     `gorm:"index" json:"actor_id,string"`
	ActorName string    `json:"actor_name"`
	Action    string    `gorm:"size:64" json:"action"`
	Detail    string    `gorm:"size:2048" json:"detail"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName Specify table name
func (AdminAudit) TableName() string {
	return "mkt_admin_audit"
}
