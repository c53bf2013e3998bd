package order

import (
	"context"
	"io"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/montanaflynn/stats"

	"github.com/croplink/agrimarket/internal/domain"
)

// OrderStats feeds the admin dashboard.
type OrderStats struct {
	Total        int64            `json:"total"`
	ByStatus     map[string]int64 `json:"by_status"`
	Revenue      float64          `json:"revenue"`
	MeanTotal    float64          `json:"mean_total"`
	MedianTotal  float64          `json:"median_total"`
	LargestTotal float64          `json:"largest_total"`
}

// Stats aggregates counts per status plus mean/median order totals.
func (s *Service) Stats(ctx context.Context) (*OrderStats, error) {
	type row struct {
		Status string
		N      int64
	}
	var rows []row
	err := s.db.WithContext(ctx).Model(&domain.Order{}).
		Select("status, COUNT(*) AS n").Group("status").Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := &OrderStats{ByStatus: map[string]int64{}}
	for _, r := range rows {
		out.ByStatus[r.Status] = r.N
		out.Total += r.N
	}

	var totals []float64
	if err := s.db.WithContext(ctx).Model(&domain.Order{}).
		Pluck("total_amount", &totals).Error; err != nil {
		return nil, err
	}
	if len(totals) > 0 {
		out.Revenue, _ = stats.Sum(totals)
		out.MeanTotal, _ = stats.Mean(totals)
		out.MedianTotal, _ = stats.Median(totals)
		out.LargestTotal, _ = stats.Max(totals)
	}
	return out, nil
}

type orderCSVRow struct {
	ID              int64   `csv:"id"`
	UserID          int64   `csv:"user_id"`
	Status          string  `csv:"status"`
	TotalAmount     float64 `csv:"total_amount"`
	PaymentMethod   string  `csv:"payment_method"`
	DeliveryAddress string  `csv:"delivery_address"`
	LogisticsName   string  `csv:"logistics_name"`
	TrackingNumber  string  `csv:"tracking_number"`
	CreatedAt       string  `csv:"created_at"`
}

// ExportCSV streams every order as CSV for Master reporting.
func (s *Service) ExportCSV(ctx context.Context, w io.Writer) error {
	var orders []domain.Order
	if err := s.db.WithContext(ctx).Order("created_at ASC").Find(&orders).Error; err != nil {
		return err
	}
	rows := make([]orderCSVRow, 0, len(orders))
	for _, o := range orders {
		rows = append(rows, orderCSVRow{
			ID:              o.ID,
			UserID:          o.UserID,
			Status:          o.Status,
			TotalAmount:     o.TotalAmount,
			PaymentMethod:   o.PaymentMethod,
			DeliveryAddress: o.DeliveryAddress,
			LogisticsName:   o.LogisticsName,
			TrackingNumber:  o.TrackingNumber,
			CreatedAt:       o.CreatedAt.Format(time.RFC3339),
		})
	}
	return gocsv.Marshal(rows, w)
}
