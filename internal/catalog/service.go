package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/croplink/agrimarket/internal/domain"
	"github.com/croplink/agrimarket/pkg/common"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrDuplicate  = errors.New("duplicate entry")
	ErrNoVariants = errors.New("a variant product requires at least one variant")
	ErrForbidden  = errors.New("operation not permitted for this role")
)

// Service owns the product catalog, the keyword vocabulary, vendor
// submissions and the crop advisory content.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// ---- products ----

type ProductInput struct {
	Name         string   `json:"name"`
	NameTamil    string   `json:"name_tamil"`
	Details      string   `json:"details"`
	DetailsTamil string   `json:"details_tamil"`
	SellerName   string   `json:"seller_name"`
	Image        string   `json:"image"`
	Keywords     []string `json:"keywords"`
	Stock        int      `json:"stock"`
	Price        float64  `json:"price"`
}

type VariantInput struct {
	Label string  `json:"label"`
	Price float64 `json:"price"`
	Stock int     `json:"stock"`
}

func joinKeywords(tags []string) string {
	cleaned := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			cleaned = append(cleaned, t)
		}
	}
	return strings.Join(cleaned, ",")
}

// CreateProduct inserts a flat stock/price product owned by the vendor.
func (s *Service) CreateProduct(ctx context.Context, vendorID int64, in ProductInput) (*domain.Product, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, errors.New("product name is required")
	}
	p := domain.Product{
		ID:             common.UUIDint64(),
		Name:           strings.TrimSpace(in.Name),
		NameTamil:      in.NameTamil,
		Details:        in.Details,
		DetailsTamil:   in.DetailsTamil,
		SellerName:     in.SellerName,
		VendorID:       vendorID,
		Image:          in.Image,
		Keywords:       joinKeywords(in.Keywords),
		StockAvailable: in.Stock,
		CostPerUnit:    in.Price,
	}
	if err := s.db.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateProductWithVariants inserts a product and its variants together.
// The variants path requires at least one variant; the product aggregates
// are derived from the variant set before insert.
func (s *Service) CreateProductWithVariants(ctx context.Context, vendorID int64, in ProductInput, variants []VariantInput) (*domain.Product, error) {
	if len(variants) == 0 {
		return nil, ErrNoVariants
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, errors.New("product name is required")
	}
	var p domain.Product
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p = domain.Product{
			ID:           common.UUIDint64(),
			Name:         strings.TrimSpace(in.Name),
			NameTamil:    in.NameTamil,
			Details:      in.Details,
			DetailsTamil: in.DetailsTamil,
			SellerName:   in.SellerName,
			VendorID:     vendorID,
			Image:        in.Image,
			Keywords:     joinKeywords(in.Keywords),
			HasVariants:  true,
		}
		if err := tx.Create(&p).Error; err != nil {
			return err
		}
		for _, v := range variants {
			if err := tx.Create(&domain.ProductVariant{
				ID:        common.UUIDint64(),
				ProductID: p.ID,
				Label:     v.Label,
				Price:     v.Price,
				Stock:     v.Stock,
			}).Error; err != nil {
				return err
			}
		}
		return s.recomputeAggregates(tx, p.ID)
	})
	if err != nil {
		return nil, err
	}
	return s.GetProduct(ctx, p.ID)
}

func (s *Service) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	var p domain.Product
	if err := s.db.WithContext(ctx).First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *Service) ListProducts(ctx context.Context, page, pageSize int) ([]domain.Product, int64, error) {
	var total int64
	base := s.db.WithContext(ctx).Model(&domain.Product{})
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []domain.Product
	err := base.Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).Find(&rows).Error
	return rows, total, err
}

func (s *Service) ListVendorProducts(ctx context.Context, vendorID int64) ([]domain.Product, error) {
	var rows []domain.Product
	err := s.db.WithContext(ctx).Where("vendor_id = ?", vendorID).
		Order("created_at DESC").Find(&rows).Error
	return rows, err
}

// UpdateProduct patches the provided fields. actor must be the owning vendor
// or a Master.
func (s *Service) UpdateProduct(ctx context.Context, actor *domain.User, id int64, updates map[string]interface{}) (*domain.Product, error) {
	p, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role != domain.RoleMaster && p.VendorID != actor.ID {
		return nil, ErrForbidden
	}
	updates["updated_at"] = time.Now()
	if err := s.db.WithContext(ctx).Model(&domain.Product{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.GetProduct(ctx, id)
}

// DeleteProduct hard-deletes a product and its variants. Master only.
func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&domain.Product{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Where("product_id = ?", id).Delete(&domain.ProductVariant{}).Error
	})
}

// ---- variants ----

func (s *Service) ListVariants(ctx context.Context, productID int64) ([]domain.ProductVariant, error) {
	var rows []domain.ProductVariant
	err := s.db.WithContext(ctx).Where("product_id = ?", productID).
		Order("price ASC").Find(&rows).Error
	return rows, err
}

// AddVariant inserts a variant and recomputes the parent aggregates in the
// same transaction so readers never observe a stale cache. actor must be the
// owning vendor or a Master.
func (s *Service) AddVariant(ctx context.Context, actor *domain.User, productID int64, in VariantInput) (*domain.ProductVariant, error) {
	if strings.TrimSpace(in.Label) == "" {
		return nil, errors.New("variant label is required")
	}
	v := domain.ProductVariant{
		ID:        common.UUIDint64(),
		ProductID: productID,
		Label:     in.Label,
		Price:     in.Price,
		Stock:     in.Stock,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p domain.Product
		if err := tx.First(&p, productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if actor.Role != domain.RoleMaster && p.VendorID != actor.ID {
			return ErrForbidden
		}
		if err := tx.Create(&v).Error; err != nil {
			return err
		}
		if !p.HasVariants {
			if err := tx.Model(&domain.Product{}).Where("id = ?", productID).
				Update("has_variants", true).Error; err != nil {
				return err
			}
		}
		return s.recomputeAggregates(tx, productID)
	})
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// DeleteVariant removes a variant and recomputes the parent aggregates
// transactionally. actor must own the parent product or be a Master.
func (s *Service) DeleteVariant(ctx context.Context, actor *domain.User, variantID int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var v domain.ProductVariant
		if err := tx.First(&v, variantID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		var p domain.Product
		if err := tx.First(&p, v.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if actor.Role != domain.RoleMaster && p.VendorID != actor.ID {
			return ErrForbidden
		}
		if err := tx.Delete(&domain.ProductVariant{}, variantID).Error; err != nil {
			return err
		}
		return s.recomputeAggregates(tx, v.ProductID)
	})
}

// recomputeAggregates is the single point that maintains the denormalized
// product cache: stock_available = Σ variant stock, cost_per_unit = min
// variant price. An empty variant list leaves the cache untouched.
func (s *Service) recomputeAggregates(tx *gorm.DB, productID int64) error {
	var variants []domain.ProductVariant
	if err := tx.Where("product_id = ?", productID).Find(&variants).Error; err != nil {
		return err
	}
	if len(variants) == 0 {
		zap.L().Warn("variant list empty, keeping previous aggregates",
			zap.Int64("product_id", productID))
		return nil
	}
	stock := 0
	minPrice := variants[0].Price
	for _, v := range variants {
		stock += v.Stock
		if v.Price < minPrice {
			minPrice = v.Price
		}
	}
	return tx.Model(&domain.Product{}).Where("id = ?", productID).
		Updates(map[string]interface{}{
			"stock_available": stock,
			"cost_per_unit":   minPrice,
			"updated_at":      time.Now(),
		}).Error
}

// ---- keywords ----

func (s *Service) ListKeywords(ctx context.Context) ([]domain.Keyword, error) {
	var rows []domain.Keyword
	err := s.db.WithContext(ctx).Order("name ASC").Find(&rows).Error
	return rows, err
}

func (s *Service) CreateKeyword(ctx context.Context, name string) (*domain.Keyword, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("keyword name is required")
	}
	var count int64
	s.db.WithContext(ctx).Model(&domain.Keyword{}).
		Where("LOWER(name) = ?", strings.ToLower(name)).Count(&count)
	if count > 0 {
		return nil, ErrDuplicate
	}
	k := domain.Keyword{ID: common.UUIDint64(), Name: name}
	if err := s.db.WithContext(ctx).Create(&k).Error; err != nil {
		return nil, err
	}
	return &k, nil
}

func (s *Service) DeleteKeyword(ctx context.Context, id int64) error {
	res := s.db.WithContext(ctx).Delete(&domain.Keyword{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ---- pending products (vendor submission review) ----

func (s *Service) SubmitPendingProduct(ctx context.Context, vendorID int64, in ProductInput) (*domain.PendingProduct, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, errors.New("product name is required")
	}
	pp := domain.PendingProduct{
		ID:           common.UUIDint64(),
		VendorID:     vendorID,
		Name:         strings.TrimSpace(in.Name),
		NameTamil:    in.NameTamil,
		Details:      in.Details,
		DetailsTamil: in.DetailsTamil,
		SellerName:   in.SellerName,
		Image:        in.Image,
		Keywords:     joinKeywords(in.Keywords),
		Stock:        in.Stock,
		Price:        in.Price,
		Status:       domain.PendingStatusPending,
	}
	if err := s.db.WithContext(ctx).Create(&pp).Error; err != nil {
		return nil, err
	}
	return &pp, nil
}

func (s *Service) ListPendingProducts(ctx context.Context, status string) ([]domain.PendingProduct, error) {
	query := s.db.WithContext(ctx).Model(&domain.PendingProduct{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var rows []domain.PendingProduct
	err := query.Order("created_at ASC").Find(&rows).Error
	return rows, err
}

// ReviewPendingProduct approves or rejects a vendor submission. Approval
// promotes the snapshot into the live catalog inside the same transaction.
func (s *Service) ReviewPendingProduct(ctx context.Context, id int64, approve bool, note string) (*domain.PendingProduct, error) {
	var pp domain.PendingProduct
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&pp, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if pp.Status != domain.PendingStatusPending {
			return errors.Errorf("submission already %s", pp.Status)
		}
		status := domain.PendingStatusRejected
		if approve {
			status = domain.PendingStatusApproved
			if err := tx.Create(&domain.Product{
				ID:             common.UUIDint64(),
				Name:           pp.Name,
				NameTamil:      pp.NameTamil,
				Details:        pp.Details,
				DetailsTamil:   pp.DetailsTamil,
				SellerName:     pp.SellerName,
				VendorID:       pp.VendorID,
				Image:          pp.Image,
				Keywords:       pp.Keywords,
				StockAvailable: pp.Stock,
				CostPerUnit:    pp.Price,
			}).Error; err != nil {
				return err
			}
		}
		pp.Status = status
		pp.ReviewNote = note
		pp.UpdatedAt = time.Now()
		return tx.Save(&pp).Error
	})
	if err != nil {
		return nil, err
	}
	return &pp, nil
}
