package order

import (
	"context"
	"fmt"
	"testing"

	"github.com/asaskevich/EventBus"
	"github.com/glebarez/sqlite"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/croplink/agrimarket/internal/domain"
	"github.com/croplink/agrimarket/pkg/common"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(domain.Tables...))
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, name string, stock int, price float64) *domain.Product {
	t.Helper()
	p := domain.Product{
		ID:             common.UUIDint64(),
		Name:           name,
		StockAvailable: stock,
		CostPerUnit:    price,
	}
	require.NoError(t, db.Create(&p).Error)
	return &p
}

func TestAddToCartIsIdempotentOnPair(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil)
	ctx := context.Background()

	p := seedProduct(t, db, "Rose sapling", 10, 50)
	userID := common.UUIDint64()

	require.NoError(t, svc.AddToCart(ctx, userID, p.ID, 2))
	require.NoError(t, svc.AddToCart(ctx, userID, p.ID, 3))

	lines, err := svc.ListCart(ctx, userID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	require.Equal(t, 5, lines[0].Quantity)

	var count int64
	db.Model(&domain.CartItem{}).Where("user_id = ?", userID).Count(&count)
	require.EqualValues(t, 1, count)
}

func TestAddToCartUnknownProduct(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil)

	err := svc.AddToCart(context.Background(), common.UUIDint64(), 424242, 1)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrNotFound))
}

func TestSetCartQuantity(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil)
	ctx := context.Background()

	p := seedProduct(t, db, "Marigold seeds", 100, 20)
	userID := common.UUIDint64()
	require.NoError(t, svc.AddToCart(ctx, userID, p.ID, 2))

	require.NoError(t, svc.SetCartQuantity(ctx, userID, p.ID, 7))
	lines, err := svc.ListCart(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, 7, lines[0].Quantity)

	// zero removes the line
	require.NoError(t, svc.SetCartQuantity(ctx, userID, p.ID, 0))
	lines, err = svc.ListCart(ctx, userID)
	require.NoError(t, err)
	require.Empty(t, lines)
}

func TestCreateOrderWorkedExample(t *testing.T) {
	db := newTestDB(t)
	bus := EventBus.New()
	svc := NewService(db, bus)
	ctx := context.Background()

	var events []StatusEvent
	require.NoError(t, bus.Subscribe(TopicOrderCreated, func(evt StatusEvent) {
		events = append(events, evt)
	}))

	p := seedProduct(t, db, "Paddy seed bag", 10, 50)
	userID := common.UUIDint64()
	require.NoError(t, svc.AddToCart(ctx, userID, p.ID, 3))

	ord, err := svc.Create(ctx, userID, CreateOrderRequest{
		PaymentMethod:   "cod",
		DeliveryAddress: "12 Farm Road",
	})
	require.NoError(t, err)
	require.Equal(t, string(StatusPending), ord.Status)
	require.InDelta(t, 150.0, ord.TotalAmount, 0.001)

	var stored domain.Product
	require.NoError(t, db.First(&stored, p.ID).Error)
	require.Equal(t, 7, stored.StockAvailable)

	lines, err := svc.ListCart(ctx, userID)
	require.NoError(t, err)
	require.Empty(t, lines)

	items, err := svc.Items(ctx, ord.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, p.ID, items[0].ProductID)
	require.Equal(t, "Paddy seed bag", items[0].ProductName)
	require.Equal(t, 3, items[0].Quantity)
	require.InDelta(t, 50.0, items[0].PricePerUnit, 0.001)

	timeline, err := svc.Timeline(ctx, ord.ID)
	require.NoError(t, err)
	require.Len(t, timeline, 1)
	require.Equal(t, string(StatusPending), timeline[0].Status)

	require.Len(t, events, 1)
	require.Equal(t, ord.ID, events[0].OrderID)
}

func TestCreateOrderEmptyCart(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil)

	_, err := svc.Create(context.Background(), common.UUIDint64(), CreateOrderRequest{})
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrEmptyCart))

	var count int64
	db.Model(&domain.Order{}).Count(&count)
	require.EqualValues(t, 0, count)
}

func TestCreateOrderRollsBackOnLateFailure(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil)
	ctx := context.Background()

	p := seedProduct(t, db, "Paddy seed", 10, 50)
	userID := common.UUIDint64()
	require.NoError(t, svc.AddToCart(ctx, userID, p.ID, 3))

	// the history insert is the last write inside the checkout transaction;
	// dropping its table forces a failure after order, items and stock
	require.NoError(t, db.Migrator().DropTable(&domain.OrderStatusHistory{}))

	_, err := svc.Create(ctx, userID, CreateOrderRequest{PaymentMethod: "cod"})
	require.Error(t, err)

	var orders, items int64
	require.NoError(t, db.Model(&domain.Order{}).Count(&orders).Error)
	require.NoError(t, db.Model(&domain.OrderItem{}).Count(&items).Error)
	require.Zero(t, orders)
	require.Zero(t, items)

	var got domain.Product
	require.NoError(t, db.First(&got, p.ID).Error)
	require.Equal(t, 10, got.StockAvailable)

	lines, err := svc.ListCart(ctx, userID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	require.Equal(t, 3, lines[0].Quantity)
}

func TestCreateOrderAllowsNegativeStock(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil)
	ctx := context.Background()

	p := seedProduct(t, db, "Compost bag", 2, 30)
	userID := common.UUIDint64()
	require.NoError(t, svc.AddToCart(ctx, userID, p.ID, 5))

	_, err := svc.Create(ctx, userID, CreateOrderRequest{PaymentMethod: "cod"})
	require.NoError(t, err)

	var stored domain.Product
	require.NoError(t, db.First(&stored, p.ID).Error)
	require.Equal(t, -3, stored.StockAvailable)
}

func TestOrderItemsImmutableAfterCatalogEdit(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil)
	ctx := context.Background()

	p := seedProduct(t, db, "Neem oil", 10, 80)
	userID := common.UUIDint64()
	require.NoError(t, svc.AddToCart(ctx, userID, p.ID, 1))
	ord, err := svc.Create(ctx, userID, CreateOrderRequest{PaymentMethod: "cod"})
	require.NoError(t, err)

	// later catalog edits must not alter the snapshot
	require.NoError(t, db.Model(&domain.Product{}).Where("id = ?", p.ID).
		Updates(map[string]interface{}{"name": "Neem oil premium", "cost_per_unit": 120.0}).Error)

	items, err := svc.Items(ctx, ord.ID)
	require.NoError(t, err)
	require.Equal(t, "Neem oil", items[0].ProductName)
	require.InDelta(t, 80.0, items[0].PricePerUnit, 0.001)

	stored, err := svc.Get(ctx, ord.ID)
	require.NoError(t, err)
	require.InDelta(t, 80.0, stored.TotalAmount, 0.001)
}

func TestUpdateStatusEnforcesTransitions(t *testing.T) {
	db := newTestDB(t)
	bus := EventBus.New()
	svc := NewService(db, bus)
	ctx := context.Background()

	var events []StatusEvent
	require.NoError(t, bus.Subscribe(TopicOrderStatusChanged, func(evt StatusEvent) {
		events = append(events, evt)
	}))

	p := seedProduct(t, db, "Sprayer", 5, 500)
	userID := common.UUIDint64()
	actorID := common.UUIDint64()
	require.NoError(t, svc.AddToCart(ctx, userID, p.ID, 1))
	ord, err := svc.Create(ctx, userID, CreateOrderRequest{PaymentMethod: "upi"})
	require.NoError(t, err)

	// pending -> dispatched skips confirmation and must be rejected
	_, err = svc.UpdateStatus(ctx, ord.ID, actorID, UpdateStatusRequest{Status: "dispatched"})
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrInvalidTransition))

	_, err = svc.UpdateStatus(ctx, ord.ID, actorID, UpdateStatusRequest{Status: "confirmed"})
	require.NoError(t, err)

	note := "packed"
	_, err = svc.UpdateStatus(ctx, ord.ID, actorID, UpdateStatusRequest{Status: "processing", Note: &note})
	require.NoError(t, err)

	carrier := "India Post"
	tracking := "RB123456789IN"
	date := "2026-09-05"
	updated, err := svc.UpdateStatus(ctx, ord.ID, actorID, UpdateStatusRequest{
		Status:         "shipped", // legacy alias of dispatched
		LogisticsName:  &carrier,
		TrackingNumber: &tracking,
		DeliveryDate:   &date,
	})
	require.NoError(t, err)
	require.Equal(t, string(StatusDispatched), updated.Status)
	require.Equal(t, carrier, updated.LogisticsName)
	require.Equal(t, tracking, updated.TrackingNumber)
	require.NotNil(t, updated.DeliveryDate)

	// dispatched is terminal
	_, err = svc.UpdateStatus(ctx, ord.ID, actorID, UpdateStatusRequest{Status: "cancelled"})
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrInvalidTransition))

	timeline, err := svc.Timeline(ctx, ord.ID)
	require.NoError(t, err)
	require.Len(t, timeline, 4) // pending, confirmed, processing, dispatched
	require.Equal(t, string(StatusDispatched), timeline[3].Status)
	require.Equal(t, actorID, timeline[3].ChangedBy)

	require.Len(t, events, 3)
}

func TestUpdateStatusRejectsUnknownValue(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil)

	_, err := svc.UpdateStatus(context.Background(), 1, 1, UpdateStatusRequest{Status: "lost"})
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrInvalidStatus))
}

func TestDeleteOrderKeepsStock(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil)
	ctx := context.Background()

	p := seedProduct(t, db, "Trowel", 10, 90)
	userID := common.UUIDint64()
	require.NoError(t, svc.AddToCart(ctx, userID, p.ID, 4))
	ord, err := svc.Create(ctx, userID, CreateOrderRequest{PaymentMethod: "cod"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, ord.ID))

	_, err = svc.Get(ctx, ord.ID)
	require.True(t, errors.Is(err, ErrNotFound))

	items, err := svc.Items(ctx, ord.ID)
	require.NoError(t, err)
	require.Empty(t, items)

	// deletion does not return the stock
	var stored domain.Product
	require.NoError(t, db.First(&stored, p.ID).Error)
	require.Equal(t, 6, stored.StockAvailable)

	require.True(t, errors.Is(svc.Delete(ctx, ord.ID), ErrNotFound))
}

func TestListAllFiltersByStatus(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil)
	ctx := context.Background()

	p := seedProduct(t, db, "Hoe", 50, 120)
	actorID := common.UUIDint64()
	for i := 0; i < 3; i++ {
		userID := common.UUIDint64()
		require.NoError(t, svc.AddToCart(ctx, userID, p.ID, 1))
		ord, err := svc.Create(ctx, userID, CreateOrderRequest{PaymentMethod: "cod"})
		require.NoError(t, err)
		if i == 0 {
			_, err = svc.UpdateStatus(ctx, ord.ID, actorID, UpdateStatusRequest{Status: "confirmed"})
			require.NoError(t, err)
		}
	}

	rows, total, err := svc.ListAll(ctx, "", 1, 10)
	require.NoError(t, err)
	require.EqualValues(t, 3, total)
	require.Len(t, rows, 3)

	rows, total, err = svc.ListAll(ctx, "confirmed", 1, 10)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Len(t, rows, 1)

	_, _, err = svc.ListAll(ctx, "bogus", 1, 10)
	require.True(t, errors.Is(err, ErrInvalidStatus))
}
