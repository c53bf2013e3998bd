package domain

import "time"

// Product is a marketplace listing. StockAvailable and CostPerUnit are
// derived caches when HasVariants is set: sum of variant stock and min of
// variant price, recomputed inside every variant mutation.
type Product struct {
	ID             int64     `json:"id,string" form:"id"`
	Name           string    `gorm:"index" json:"name" form:"name"`
	NameTamil      string    `json:"name_tamil" form:"name_tamil"`
	Details        string    `gorm:"size:4096" json:"details" form:"details"`
	DetailsTamil   string    `gorm:"size:4096" json:"details_tamil" form:"details_tamil"`
	SellerName     string    `json:"seller_name" form:"seller_name"`
	VendorID       int64     `gorm:"index" json:"vendor_id,string" form:"vendor_id"`
	Image          string    `gorm:"size:1024" json:"image" form:"image"`
	Keywords       string    `gorm:"size:1024" json:"keywords" form:"keywords"` // comma-joined tag list
	StockAvailable int       `json:"stock_available" form:"stock_available"`
	CostPerUnit    float64   `json:"cost_per_unit" form:"cost_per_unit"`
	HasVariants    bool      `json:"has_variants" form:"has_variants"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName Specify table name
func (Product) TableName() string {
	return "mkt_product"
}

type ProductVariant struct {
	ID        int64     `json:"id,string" form:"id"`
	ProductID int64     `gorm:"index" json:"product_id,string" form:"product_id"`
	Label     string    `json:"label" form:"label"`
	Price     float64   `json:"price" form:"price"`
	Stock     int       `json:"stock" form:"stock"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName Specify table name
func (ProductVariant) TableName() string {
	return "mkt_product_variant"
}

const (
	PendingStatusPending  = "pending"
	PendingStatusApproved = "approved"
	PendingStatusRejected = "rejected"
)

// PendingProduct is a vendor submission awaiting Master review. Approval
// promotes the snapshot into the live catalog.
type PendingProduct struct {
	ID           int64     `json:"id,string" form:"id"`
	VendorID     int64     `gorm:"index" json:"vendor_id,string" form:"vendor_id"`
	Name         string    `json:"name" form:"name"`
	NameTamil    string    `json:"name_tamil" form:"name_tamil"`
	Details      string    `gorm:"size:4096" json:"details" form:"details"`
	DetailsTamil string    `gorm:"size:4096" json:"details_tamil" form:"details_tamil"`
	SellerName   string    `json:"seller_name" form:"seller_name"`
	Image        string    `gorm:"size:1024" json:"image" form:"image"`
	Keywords     string    `gorm:"size:1024" json:"keywords" form:"keywords"`
	Stock        int       `json:"stock" form:"stock"`
	Price        float64   `json:"price" form:"price"`
	Status       string    `gorm:"index;size:16" json:"status" form:"status"`
	ReviewNote   string    `json:"review_note" form:"review_note"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName Specify table name
func (PendingProduct) TableName() string {
	return "mkt_pending_product"
}

type Keyword struct {
	ID        int64     `json:"id,string" form:"id"`
	Name      string    `gorm:"uniqueIndex;size:128" json:"name" form:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName Specify table name
func (Keyword) TableName() string {
	return "mkt_keyword"
}
