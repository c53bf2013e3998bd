package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/panjf2000/ants/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/croplink/agrimarket/internal/domain"
	"github.com/croplink/agrimarket/internal/order"
	"github.com/croplink/agrimarket/pkg/common"
)

// Service stores the per-user notification feed, fans broadcast messages
// out on a worker pool and writes an entry for every order status change.
type Service struct {
	db   *gorm.DB
	pool *ants.Pool
}

func NewService(db *gorm.DB) (*Service, error) {
	pool, err := ants.NewPool(16, ants.WithNonblocking(false))
	if err != nil {
		return nil, err
	}
	return &Service{db: db, pool: pool}, nil
}

// Subscribe wires the service to the order event topics.
func (s *Service) Subscribe(bus EventBus.Bus) error {
	if err := bus.Subscribe(order.TopicOrderStatusChanged, s.onOrderStatusChanged); err != nil {
		return err
	}
	return bus.Subscribe(order.TopicOrderCreated, s.onOrderCreated)
}

func (s *Service) onOrderCreated(evt order.StatusEvent) {
	s.write(evt.UserID, "Order placed",
		fmt.Sprintf("Your order %d has been received and is pending confirmation.", evt.OrderID))
}

func (s *Service) onOrderStatusChanged(evt order.StatusEvent) {
	s.write(evt.UserID, "Order update",
		fmt.Sprintf("Order %d is now %s.", evt.OrderID, evt.Status))
}

func (s *Service) write(userID int64, title, body string) {
	n := domain.Notification{
		ID:     common.UUIDint64(),
		UserID: userID,
		Title:  title,
		Body:   body,
	}
	if err := s.db.Create(&n).Error; err != nil {
		zap.L().Error("failed to write notification",
			zap.Int64("user_id", userID), zap.Error(err))
	}
}

// Broadcast fans a Master announcement out to every user account on the
// worker pool.
func (s *Service) Broadcast(ctx context.Context, title, body string) (int, error) {
	var userIDs []int64
	if err := s.db.WithContext(ctx).Model(&domain.User{}).Pluck("id", &userIDs).Error; err != nil {
		return 0, err
	}
	for _, uid := range userIDs {
		uid := uid
		if err := s.pool.Submit(func() {
			s.write(uid, title, body)
		}); err != nil {
			zap.L().Warn("notification fanout submit failed",
				zap.Int64("user_id", uid), zap.Error(err))
		}
	}
	zap.L().Info("notification broadcast queued",
		zap.String("title", title), zap.Int("recipients", len(userIDs)))
	return len(userIDs), nil
}

// List returns the user's feed, newest first.
func (s *Service) List(ctx context.Context, userID int64, limit int) ([]domain.Notification, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var rows []domain.Notification
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at DESC").Limit(limit).Find(&rows).Error
	return rows, err
}

func (s *Service) MarkRead(ctx context.Context, userID, notificationID int64) error {
	res := s.db.WithContext(ctx).Model(&domain.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Updates(map[string]interface{}{"read": true, "updated_at": time.Now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errors.New("notification not found")
	}
	return nil
}

// PruneRead removes read notifications older than the retention window. It
// is the single place the retention policy lives; the daily cleanup job
// calls it with the configured window.
func PruneRead(db *gorm.DB, olderThan time.Duration) {
	cutoff := time.Now().Add(-olderThan)
	res := db.Where("read = ? AND created_at < ?", true, cutoff).Delete(&domain.Notification{})
	if res.Error != nil {
		zap.L().Error("notification prune failed", zap.Error(res.Error))
		return
	}
	if res.RowsAffected > 0 {
		zap.L().Info("pruned read notifications", zap.Int64("count", res.RowsAffected))
	}
}

// Release drains the fanout pool.
func (s *Service) Release() {
	s.pool.Release()
}
