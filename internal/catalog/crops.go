package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/text/language"
	"gorm.io/gorm"

	"github.com/croplink/agrimarket/internal/domain"
	"github.com/croplink/agrimarket/pkg/common"
)

var ErrBadLanguage = errors.New("unsupported content language")

var contentLanguages = language.NewMatcher([]language.Tag{
	language.English,
	language.Tamil,
})

// NormalizeLanguage maps a client language tag onto one of the two content
// languages, or fails for anything that matches neither.
func NormalizeLanguage(tag string) (string, error) {
	parsed, err := language.Parse(strings.TrimSpace(tag))
	if err != nil {
		return "", errors.Wrapf(ErrBadLanguage, "%q", tag)
	}
	_, idx, conf := contentLanguages.Match(parsed)
	if conf == language.No {
		return "", errors.Wrapf(ErrBadLanguage, "%q", tag)
	}
	if idx == 1 {
		return common.LangTamil, nil
	}
	return common.LangEnglish, nil
}

// ---- crops ----

func (s *Service) ListCrops(ctx context.Context) ([]domain.Crop, error) {
	var rows []domain.Crop
	err := s.db.WithContext(ctx).Order("name ASC").Find(&rows).Error
	return rows, err
}

func (s *Service) CreateCrop(ctx context.Context, crop *domain.Crop) error {
	if strings.TrimSpace(crop.Name) == "" {
		return errors.New("crop name is required")
	}
	crop.ID = common.UUIDint64()
	return s.db.WithContext(ctx).Create(crop).Error
}

func (s *Service) UpdateCrop(ctx context.Context, id int64, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()
	res := s.db.WithContext(ctx).Model(&domain.Crop{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteCrop removes the crop with all dependent content rows.
func (s *Service) DeleteCrop(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&domain.Crop{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		if err := tx.Where("crop_id = ?", id).Delete(&domain.CropGuide{}).Error; err != nil {
			return err
		}
		var pestIDs []int64
		if err := tx.Model(&domain.CropPest{}).Where("crop_id = ?", id).Pluck("id", &pestIDs).Error; err != nil {
			return err
		}
		if len(pestIDs) > 0 {
			if err := tx.Where("pest_id IN ?", pestIDs).Delete(&domain.PestImage{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("crop_id = ?", id).Delete(&domain.CropPest{}).Error; err != nil {
			return err
		}
		var diseaseIDs []int64
		if err := tx.Model(&domain.CropDisease{}).Where("crop_id = ?", id).Pluck("id", &diseaseIDs).Error; err != nil {
			return err
		}
		if len(diseaseIDs) > 0 {
			if err := tx.Where("disease_id IN ?", diseaseIDs).Delete(&domain.DiseaseImage{}).Error; err != nil {
				return err
			}
		}
		return tx.Where("crop_id = ?", id).Delete(&domain.CropDisease{}).Error
	})
}

// ---- guides ----

// UpsertGuide writes the per-language cultivation guide, replacing an
// existing row for the same (crop, language).
func (s *Service) UpsertGuide(ctx context.Context, guide *domain.CropGuide) error {
	lang, err := NormalizeLanguage(guide.Language)
	if err != nil {
		return err
	}
	guide.Language = lang
	var existing domain.CropGuide
	err = s.db.WithContext(ctx).
		Where("crop_id = ? AND language = ?", guide.CropID, lang).
		First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		guide.ID = common.UUIDint64()
		return s.db.WithContext(ctx).Create(guide).Error
	case err != nil:
		return err
	}
	guide.ID = existing.ID
	guide.CreatedAt = existing.CreatedAt
	guide.UpdatedAt = time.Now()
	return s.db.WithContext(ctx).Save(guide).Error
}

func (s *Service) GetGuide(ctx context.Context, cropID int64, lang string) (*domain.CropGuide, error) {
	norm, err := NormalizeLanguage(lang)
	if err != nil {
		return nil, err
	}
	var guide domain.CropGuide
	if err := s.db.WithContext(ctx).
		Where("crop_id = ? AND language = ?", cropID, norm).
		First(&guide).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &guide, nil
}

// ---- pests and diseases ----

func (s *Service) ListPests(ctx context.Context, cropID int64, lang string) ([]domain.CropPest, error) {
	norm, err := NormalizeLanguage(lang)
	if err != nil {
		return nil, err
	}
	var rows []domain.CropPest
	err = s.db.WithContext(ctx).
		Where("crop_id = ? AND language = ?", cropID, norm).
		Order("name ASC").Find(&rows).Error
	return rows, err
}

func (s *Service) CreatePest(ctx context.Context, pest *domain.CropPest) error {
	lang, err := NormalizeLanguage(pest.Language)
	if err != nil {
		return err
	}
	pest.Language = lang
	if strings.TrimSpace(pest.Name) == "" {
		return errors.New("pest name is required")
	}
	pest.ID = common.UUIDint64()
	if err := s.db.WithContext(ctx).Create(pest).Error; err != nil {
		return errors.Wrap(ErrDuplicate, err.Error())
	}
	return nil
}

func (s *Service) DeletePest(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&domain.CropPest{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Where("pest_id = ?", id).Delete(&domain.PestImage{}).Error
	})
}

func (s *Service) AddPestImage(ctx context.Context, img *domain.PestImage) error {
	img.ID = common.UUIDint64()
	return s.db.WithContext(ctx).Create(img).Error
}

func (s *Service) ListPestImages(ctx context.Context, pestID int64) ([]domain.PestImage, error) {
	var rows []domain.PestImage
	err := s.db.WithContext(ctx).Where("pest_id = ?", pestID).Find(&rows).Error
	return rows, err
}

func (s *Service) ListDiseases(ctx context.Context, cropID int64, lang string) ([]domain.CropDisease, error) {
	norm, err := NormalizeLanguage(lang)
	if err != nil {
		return nil, err
	}
	var rows []domain.CropDisease
	err = s.db.WithContext(ctx).
		Where("crop_id = ? AND language = ?", cropID, norm).
		Order("name ASC").Find(&rows).Error
	return rows, err
}

func (s *Service) CreateDisease(ctx context.Context, disease *domain.CropDisease) error {
	lang, err := NormalizeLanguage(disease.Language)
	if err != nil {
		return err
	}
	disease.Language = lang
	if strings.TrimSpace(disease.Name) == "" {
		return errors.New("disease name is required")
	}
	disease.ID = common.UUIDint64()
	if err := s.db.WithContext(ctx).Create(disease).Error; err != nil {
		return errors.Wrap(ErrDuplicate, err.Error())
	}
	return nil
}

func (s *Service) DeleteDisease(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&domain.CropDisease{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Where("disease_id = ?", id).Delete(&domain.DiseaseImage{}).Error
	})
}

func (s *Service) AddDiseaseImage(ctx context.Context, img *domain.DiseaseImage) error {
	img.ID = common.UUIDint64()
	return s.db.WithContext(ctx).Create(img).Error
}

func (s *Service) ListDiseaseImages(ctx context.Context, diseaseID int64) ([]domain.DiseaseImage, error) {
	var rows []domain.DiseaseImage
	err := s.db.WithContext(ctx).Where("disease_id = ?", diseaseID).Find(&rows).Error
	return rows, err
}
