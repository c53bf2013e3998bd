package order

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/croplink/agrimarket/internal/domain"
	"github.com/croplink/agrimarket/pkg/common"
)

func seedOrder(t *testing.T, svc *Service, total float64) *domain.Order {
	t.Helper()
	ctx := context.Background()
	p := seedProduct(t, svc.db, "fixture", 1000, total)
	userID := common.UUIDint64()
	require.NoError(t, svc.AddToCart(ctx, userID, p.ID, 1))
	ord, err := svc.Create(ctx, userID, CreateOrderRequest{PaymentMethod: "cod"})
	require.NoError(t, err)
	return ord
}

func TestStats(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil)
	ctx := context.Background()

	seedOrder(t, svc, 100)
	seedOrder(t, svc, 200)
	ord := seedOrder(t, svc, 600)
	_, err := svc.UpdateStatus(ctx, ord.ID, common.UUIDint64(), UpdateStatusRequest{Status: "confirmed"})
	require.NoError(t, err)

	got, err := svc.Stats(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 3, got.Total)
	require.EqualValues(t, 2, got.ByStatus[string(StatusPending)])
	require.EqualValues(t, 1, got.ByStatus[string(StatusConfirmed)])
	require.InDelta(t, 900.0, got.Revenue, 0.001)
	require.InDelta(t, 300.0, got.MeanTotal, 0.001)
	require.InDelta(t, 200.0, got.MedianTotal, 0.001)
	require.InDelta(t, 600.0, got.LargestTotal, 0.001)
}

func TestStatsEmpty(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil)

	got, err := svc.Stats(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 0, got.Total)
	require.Zero(t, got.Revenue)
}

func TestExportCSV(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil)

	ord := seedOrder(t, svc, 150)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportCSV(context.Background(), &buf))

	out := buf.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	require.Contains(t, lines[0], "total_amount")
	require.Contains(t, lines[1], "pending")
	require.Contains(t, lines[1], "150")
	_ = ord
}
