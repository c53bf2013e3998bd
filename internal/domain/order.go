package domain

import "time"

// CartItem is one line of a user's cart. The (user, product) pair is unique:
// re-adding a product increments Quantity rather than inserting a row.
type CartItem struct {
	ID        int64     `json:"id,string" form:"id"`
	UserID    int64     `gorm:"index:idx_cart_user_product,unique" json:"user_id,string" form:"user_id"`
	ProductID int64     `gorm:"index:idx_cart_user_product,unique" json:"product_id,string" form:"product_id"`
	Quantity  int       `json:"quantity" form:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName Specify table name
func (CartItem) TableName() string {
	return "mkt_cart_item"
}

type Order struct {
	ID              int64      `json:"id,string" form:"id"`
	UserID          int64      `gorm:"index" json:"user_id,string" form:"user_id"`
	TotalAmount     float64    `json:"total_amount" form:"total_amount"`
	PaymentMethod   string     `gorm:"size:32" json:"payment_method" form:"payment_method"`
	DeliveryAddress string     `gorm:"size:1024" json:"delivery_address" form:"delivery_address"`
	Status          string     `gorm:"index;size:32" json:"status" form:"status"`
	StatusNote      string     `json:"status_note" form:"status_note"`
	Note            string     `json:"note" form:"note"`
	DeliveryDate    *time.Time `json:"delivery_date,omitempty" form:"delivery_date"`
	LogisticsName   string     `json:"logistics_name" form:"logistics_name"`
	TrackingNumber  string     `json:"tracking_number" form:"tracking_number"`
	TrackingURL     string     `gorm:"size:1024" json:"tracking_url" form:"tracking_url"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// TableName Specify table name
func (Order) TableName() string {
	return "mkt_order"
}

// OrderItem is the write-once snapshot of one cart line at checkout.
// Product name and unit price are denormalized so later catalog edits
// never change a past order.
type OrderItem struct {
	ID           int64     `json:"id,string" form:"id"`
	OrderID      int64     `gorm:"index" json:"order_id,string" form:"order_id"`
	ProductID    int64     `json:"product_id,string" form:"product_id"`
	ProductName  string    `json:"product_name" form:"product_name"`
	Quantity     int       `json:"quantity" form:"quantity"`
	PricePerUnit float64   `json:"price_per_unit" form:"price_per_unit"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName Specify table name
func (OrderItem) TableName() string {
	return "mkt_order_item"
}

// OrderStatusHistory records one row per status transition; the customer
// facing timeline is computed from these rows.
type OrderStatusHistory struct {
	ID        int64     `json:"id,string" form:"id"`
	OrderID   int64     `gorm:"index" json:"order_id,string" form:"order_id"`
	Status    string    `gorm:"size:32" json:"status" form:"status"`
	Note      string    `json:"note" form:"note"`
	ChangedBy int64     `json:"changed_by,string" form:"changed_by"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName Specify table name
func (OrderStatusHistory) TableName() string {
	return "mkt_order_status_history"
}

type LogisticsCarrier struct {
	ID                  int64     `json:"id,string" form:"id"`
	Name                string    `gorm:"uniqueIndex;size:128" json:"name" form:"name"`
	TrackingURLTemplate string    `gorm:"size:1024" json:"tracking_url_template" form:"tracking_url_template"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// TableName Specify table name
func (LogisticsCarrier) TableName() string {
	return "mkt_logistics_carrier"
}
