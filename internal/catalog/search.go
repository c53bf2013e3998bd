package catalog

import (
	"context"
	"strings"

	"github.com/croplink/agrimarket/internal/domain"
)

// Search returns every product whose name, Tamil name, keywords, details or
// Tamil details contains the query, case-insensitively.
func (s *Service) Search(ctx context.Context, q string) ([]domain.Product, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return []domain.Product{}, nil
	}
	pattern := "%" + strings.ToLower(q) + "%"
	var rows []domain.Product
	err := s.db.WithContext(ctx).
		Where("LOWER(name) LIKE ? OR LOWER(name_tamil) LIKE ? OR LOWER(keywords) LIKE ? OR LOWER(details) LIKE ? OR LOWER(details_tamil) LIKE ?",
			pattern, pattern, pattern, pattern, pattern).
		Order("name ASC").
		Find(&rows).Error
	return rows, err
}

// ByKeyword returns products tagged with the exact keyword. Tags are stored
// comma-joined, so the match runs against the padded list.
func (s *Service) ByKeyword(ctx context.Context, name string) ([]domain.Product, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return []domain.Product{}, nil
	}
	var rows []domain.Product
	err := s.db.WithContext(ctx).
		Where("(',' || LOWER(keywords) || ',') LIKE ?", "%,"+name+",%").
		Order("name ASC").
		Find(&rows).Error
	return rows, err
}
