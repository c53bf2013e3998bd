package order

import (
	"context"
	"time"

	"github.com/araddon/dateparse"
	"github.com/asaskevich/EventBus"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/croplink/agrimarket/internal/domain"
	"github.com/croplink/agrimarket/pkg/common"
)

const (
	TopicOrderCreated       = "order.created"
	TopicOrderStatusChanged = "order.status.changed"
)

var (
	ErrEmptyCart = errors.New("cart is empty")
	ErrNotFound  = errors.New("order not found")
)

// StatusEvent is published on the bus for every lifecycle change.
type StatusEvent struct {
	OrderID int64
	UserID  int64
	Status  Status
}

// Service is the order engine: cart maintenance, transactional checkout and
// the server-enforced status machine.
type Service struct {
	db  *gorm.DB
	bus EventBus.Bus
}

func NewService(db *gorm.DB, bus EventBus.Bus) *Service {
	return &Service{db: db, bus: bus}
}

// ---- cart ----

// CartLine is a cart row joined with the current product price and stock.
type CartLine struct {
	ItemID      int64   `json:"item_id,string"`
	ProductID   int64   `json:"product_id,string"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	CostPerUnit float64 `json:"cost_per_unit"`
	Stock       int     `json:"stock"`
}

// AddToCart inserts a cart line or, if the (user, product) pair already
// exists, increments its quantity.
func (s *Service) AddToCart(ctx context.Context, userID, productID int64, qty int) error {
	if qty <= 0 {
		return errors.New("quantity must be positive")
	}
	var product domain.Product
	if err := s.db.WithContext(ctx).First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.Wrap(ErrNotFound, "product")
		}
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item domain.CartItem
		err := tx.Where("user_id = ? AND product_id = ?", userID, productID).First(&item).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return tx.Create(&domain.CartItem{
				ID:        common.UUIDint64(),
				UserID:    userID,
				ProductID: productID,
				Quantity:  qty,
			}).Error
		case err != nil:
			return err
		}
		return tx.Model(&domain.CartItem{}).Where("id = ?", item.ID).
			Update("quantity", gorm.Expr("quantity + ?", qty)).Error
	})
}

// SetCartQuantity replaces the quantity of an existing line; zero removes it.
func (s *Service) SetCartQuantity(ctx context.Context, userID, productID int64, qty int) error {
	if qty < 0 {
		return errors.New("quantity must not be negative")
	}
	if qty == 0 {
		return s.RemoveFromCart(ctx, userID, productID)
	}
	res := s.db.WithContext(ctx).Model(&domain.CartItem{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Update("quantity", qty)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errors.Wrap(ErrNotFound, "cart item")
	}
	return nil
}

func (s *Service) RemoveFromCart(ctx context.Context, userID, productID int64) error {
	return s.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&domain.CartItem{}).Error
}

func (s *Service) ClearCart(ctx context.Context, userID int64) error {
	return s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&domain.CartItem{}).Error
}

func (s *Service) ListCart(ctx context.Context, userID int64) ([]CartLine, error) {
	return s.cartLines(s.db.WithContext(ctx), userID)
}

// CartTotal returns Σ quantity × current cost_per_unit for the user's cart.
func (s *Service) CartTotal(ctx context.Context, userID int64) (float64, error) {
	lines, err := s.cartLines(s.db.WithContext(ctx), userID)
	if err != nil {
		return 0, err
	}
	var total float64
	for _, l := range lines {
		total += float64(l.Quantity) * l.CostPerUnit
	}
	return total, nil
}

func (s *Service) cartLines(tx *gorm.DB, userID int64) ([]CartLine, error) {
	var lines []CartLine
	err := tx.Table("mkt_cart_item").
		Select("mkt_cart_item.id AS item_id, mkt_cart_item.product_id, mkt_product.name AS product_name, "+
			"mkt_cart_item.quantity, mkt_product.cost_per_unit, mkt_product.stock_available AS stock").
		Joins("JOIN mkt_product ON mkt_product.id = mkt_cart_item.product_id").
		Where("mkt_cart_item.user_id = ?", userID).
		Order("mkt_cart_item.created_at ASC").
		Scan(&lines).Error
	return lines, err
}

// ---- checkout ----

type CreateOrderRequest struct {
	PaymentMethod   string `json:"payment_method"`
	DeliveryAddress string `json:"delivery_address"`
	Note            string `json:"note"`
}

// Create turns the user's cart into an order in one transaction: price
// snapshot, item rows, stock decrement, cart clear and the initial history
// row all commit together or not at all. Stock sufficiency is deliberately
// not checked; stock may go negative (see DESIGN.md).
func (s *Service) Create(ctx context.Context, userID int64, req CreateOrderRequest) (*domain.Order, error) {
	var created domain.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lines, err := s.cartLines(tx, userID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return ErrEmptyCart
		}

		var total float64
		for _, l := range lines {
			total += float64(l.Quantity) * l.CostPerUnit
		}

		now := time.Now()
		created = domain.Order{
			ID:              common.UUIDint64(),
			UserID:          userID,
			TotalAmount:     total,
			PaymentMethod:   req.PaymentMethod,
			DeliveryAddress: req.DeliveryAddress,
			Status:          string(StatusPending),
			Note:            req.Note,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := tx.Create(&created).Error; err != nil {
			return err
		}

		for _, l := range lines {
			item := domain.OrderItem{
				ID:           common.UUIDint64(),
				OrderID:      created.ID,
				ProductID:    l.ProductID,
				ProductName:  l.ProductName,
				Quantity:     l.Quantity,
				PricePerUnit: l.CostPerUnit,
				CreatedAt:    now,
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
			if err := tx.Model(&domain.Product{}).Where("id = ?", l.ProductID).
				Update("stock_available", gorm.Expr("stock_available - ?", l.Quantity)).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("user_id = ?", userID).Delete(&domain.CartItem{}).Error; err != nil {
			return err
		}

		return tx.Create(&domain.OrderStatusHistory{
			ID:        common.UUIDint64(),
			OrderID:   created.ID,
			Status:    string(StatusPending),
			ChangedBy: userID,
			CreatedAt: now,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	if s.bus != nil {
		s.bus.Publish(TopicOrderCreated, StatusEvent{OrderID: created.ID, UserID: userID, Status: StatusPending})
	}
	zap.L().Info("order created",
		zap.Int64("order_id", created.ID),
		zap.Int64("user_id", userID),
		zap.Float64("total", created.TotalAmount))
	return &created, nil
}

// ---- status machine ----

// UpdateStatusRequest has partial-update semantics: nil pointers leave the
// stored value unchanged.
type UpdateStatusRequest struct {
	Status         string  `json:"status"`
	Note           *string `json:"note,omitempty"`
	DeliveryDate   *string `json:"delivery_date,omitempty"`
	LogisticsName  *string `json:"logistics_name,omitempty"`
	TrackingNumber *string `json:"tracking_number,omitempty"`
	TrackingURL    *string `json:"tracking_url,omitempty"`
}

// UpdateStatus validates the transition, patches the explicitly provided
// fields and appends a history row, all in one transaction.
func (s *Service) UpdateStatus(ctx context.Context, orderID, actorID int64, req UpdateStatusRequest) (*domain.Order, error) {
	next, err := ParseStatus(req.Status)
	if err != nil {
		return nil, err
	}

	var ord domain.Order
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&ord, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		current, err := ParseStatus(ord.Status)
		if err != nil {
			// legacy rows may hold arbitrary strings; treat them as pending
			current = StatusPending
		}
		if !CanTransition(current, next) {
			return errors.Wrapf(ErrInvalidTransition, "%s -> %s", current, next)
		}

		updates := map[string]interface{}{
			"status":     string(next),
			"updated_at": time.Now(),
		}
		if req.Note != nil {
			updates["status_note"] = *req.Note
		}
		if req.LogisticsName != nil {
			updates["logistics_name"] = *req.LogisticsName
		}
		if req.TrackingNumber != nil {
			updates["tracking_number"] = *req.TrackingNumber
		}
		if req.TrackingURL != nil {
			updates["tracking_url"] = *req.TrackingURL
		}
		if req.DeliveryDate != nil {
			when, err := dateparse.ParseLocal(*req.DeliveryDate)
			if err != nil {
				return errors.Wrap(err, "delivery_date")
			}
			updates["delivery_date"] = when
		}

		if err := tx.Model(&domain.Order{}).Where("id = ?", orderID).Updates(updates).Error; err != nil {
			return err
		}

		note := ""
		if req.Note != nil {
			note = *req.Note
		}
		if err := tx.Create(&domain.OrderStatusHistory{
			ID:        common.UUIDint64(),
			OrderID:   orderID,
			Status:    string(next),
			Note:      note,
			ChangedBy: actorID,
			CreatedAt: time.Now(),
		}).Error; err != nil {
			return err
		}
		return tx.First(&ord, orderID).Error
	})
	if err != nil {
		return nil, err
	}

	if s.bus != nil {
		s.bus.Publish(TopicOrderStatusChanged, StatusEvent{OrderID: ord.ID, UserID: ord.UserID, Status: next})
	}
	zap.L().Info("order status changed",
		zap.Int64("order_id", ord.ID),
		zap.String("status", string(next)),
		zap.Int64("changed_by", actorID))
	return &ord, nil
}

// Delete hard-deletes the order with its items and history. Stock is not
// restored; the observed system behaves the same way.
func (s *Service) Delete(ctx context.Context, orderID int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&domain.Order{}, orderID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		if err := tx.Where("order_id = ?", orderID).Delete(&domain.OrderItem{}).Error; err != nil {
			return err
		}
		return tx.Where("order_id = ?", orderID).Delete(&domain.OrderStatusHistory{}).Error
	})
}

// ---- queries ----

func (s *Service) Get(ctx context.Context, orderID int64) (*domain.Order, error) {
	var ord domain.Order
	if err := s.db.WithContext(ctx).First(&ord, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &ord, nil
}

func (s *Service) ListByUser(ctx context.Context, userID int64) ([]domain.Order, error) {
	var orders []domain.Order
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at DESC").Find(&orders).Error
	return orders, err
}

// ListAll returns orders for the admin surface, optionally filtered by
// status, newest first.
func (s *Service) ListAll(ctx context.Context, status string, page, pageSize int) ([]domain.Order, int64, error) {
	query := s.db.WithContext(ctx).Model(&domain.Order{})
	if status != "" {
		st, err := ParseStatus(status)
		if err != nil {
			return nil, 0, err
		}
		query = query.Where("status = ?", string(st))
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var orders []domain.Order
	err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&orders).Error
	return orders, total, err
}

func (s *Service) Items(ctx context.Context, orderID int64) ([]domain.OrderItem, error) {
	var items []domain.OrderItem
	err := s.db.WithContext(ctx).Where("order_id = ?", orderID).
		Order("created_at ASC").Find(&items).Error
	return items, err
}

// Timeline returns the status history rows, oldest first.
func (s *Service) Timeline(ctx context.Context, orderID int64) ([]domain.OrderStatusHistory, error) {
	var rows []domain.OrderStatusHistory
	err := s.db.WithContext(ctx).Where("order_id = ?", orderID).
		Order("created_at ASC").Find(&rows).Error
	return rows, err
}
