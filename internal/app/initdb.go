package app

import (
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/croplink/agrimarket/internal/domain"
	"github.com/croplink/agrimarket/pkg/common"
)

func (a *Application) checkMaster() {
	const masterPhone = "0000000000"
	const defaultPassword = "agrimarket"

	hashedPassword := common.Sha256HashWithSalt(defaultPassword, common.GetSecretSalt())

	var master domain.User
	err := a.gormDB.Where("phone = ?", masterPhone).First(&master).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := a.gormDB.Create(&domain.User{
			ID:        common.UUIDint64(),
			Phone:     masterPhone,
			Password:  hashedPassword,
			Name:      "administrator",
			Role:      domain.RoleMaster,
			LastLogin: time.Now(),
		}).Error; err != nil {
			zap.L().Error("failed to create default master account", zap.Error(err))
		} else {
			zap.L().Info("initialized default master account", zap.String("phone", masterPhone))
		}
		return
	case err != nil:
		zap.L().Error("failed to query master account", zap.Error(err))
		return
	}

	resetPassword := strings.TrimSpace(master.Password) == ""
	resetRole := master.Role != domain.RoleMaster

	if !resetPassword && !resetRole {
		return
	}

	updates := map[string]interface{}{
		"updated_at": time.Now(),
	}
	if resetPassword {
		updates["password"] = hashedPassword
	}
	if resetRole {
		updates["role"] = domain.RoleMaster
	}

	if err := a.gormDB.Model(&domain.User{}).Where("id = ?", master.ID).Updates(updates).Error; err != nil {
		zap.L().Error("failed to repair master account", zap.Error(err))
		return
	}

	zap.L().Warn("repaired default master account",
		zap.String("phone", masterPhone),
		zap.Bool("passwordReset", resetPassword),
		zap.Bool("roleReset", resetRole))
}

// checkCarriers initializes the default logistics carriers used by order
// dispatch entries
func (a *Application) checkCarriers() {
	defaultCarriers := []domain.LogisticsCarrier{
		{Name: "India Post", TrackingURLTemplate: "https://www.indiapost.gov.in/track?id=%s"},
		{Name: "Delhivery", TrackingURLTemplate: "https://www.delhivery.com/track/package/%s"},
		{Name: "DTDC", TrackingURLTemplate: "https://www.dtdc.in/tracking?awb=%s"},
		{Name: "Local Delivery", TrackingURLTemplate: ""},
	}

	for _, carrier := range defaultCarriers {
		var count int64
		a.gormDB.Model(&domain.LogisticsCarrier{}).Where("name = ?", carrier.Name).Count(&count)
		if count == 0 {
			carrier.ID = common.UUIDint64()
			carrier.CreatedAt = time.Now()
			carrier.UpdatedAt = time.Now()
			if err := a.gormDB.Create(&carrier).Error; err != nil {
				zap.L().Error("failed to create default carrier", zap.String("name", carrier.Name), zap.Error(err))
			} else {
				zap.L().Info("initialized default carrier", zap.String("name", carrier.Name))
			}
		}
	}
}

// checkKeywords initializes the starter search taxonomy
func (a *Application) checkKeywords() {
	defaultKeywords := []string{
		"seeds", "saplings", "fertilizer", "pesticide", "tools",
		"rose", "jasmine", "marigold", "paddy", "vegetables",
	}

	for _, name := range defaultKeywords {
		var count int64
		a.gormDB.Model(&domain.Keyword{}).Where("LOWER(name) = ?", strings.ToLower(name)).Count(&count)
		if count == 0 {
			if err := a.gormDB.Create(&domain.Keyword{
				ID:   common.UUIDint64(),
				Name: name,
			}).Error; err != nil {
				zap.L().Error("failed to create default keyword", zap.String("name", name), zap.Error(err))
			}
		}
	}
}

func (a *Application) checkSettings() {
	defaults := []domain.SysConfig{
		{Sort: 1, Type: "system", Name: "SystemTitle", Value: "AgriMarket", Remark: "Site title"},
		{Sort: 2, Type: "order", Name: "OrderRetentionDays", Value: "365", Remark: "Days to keep order history rows"},
		{Sort: 3, Type: "notify", Name: "NotificationRetentionDays", Value: "90", Remark: "Days to keep read notifications"},
		{Sort: 4, Type: "audit", Name: "AuditRetentionDays", Value: "365", Remark: "Days to keep admin audit entries"},
	}

	for _, cfg := range defaults {
		var count int64
		a.gormDB.Model(&domain.SysConfig{}).
			Where("type = ? and name = ?", cfg.Type, cfg.Name).
			Count(&count)
		if count == 0 {
			cfg.ID = common.UUIDint64()
			a.gormDB.Create(&cfg)
			zap.L().Info("initialized config",
				zap.String("key", cfg.Type+"."+cfg.Name),
				zap.String("default", cfg.Value))
		}
	}
}
