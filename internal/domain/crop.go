package domain

import "time"

type Crop struct {
	ID        int64     `json:"id,string" form:"id"`
	Name      string    `gorm:"index" json:"name" form:"name"`
	NameTamil string    `json:"name_tamil" form:"name_tamil"`
	Image     string    `gorm:"size:1024" json:"image" form:"image"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName Specify table name
func (Crop) TableName() string {
	return "mkt_crop"
}

// CropGuide is the cultivation guide for a crop, one row per language.
type CropGuide struct {
	ID         int64     `json:"id,string" form:"id"`
	CropID     int64     `gorm:"index:idx_guide_crop_lang,unique" json:"crop_id,string" form:"crop_id"`
	Language   string    `gorm:"index:idx_guide_crop_lang,unique;size:8" json:"language" form:"language"`
	Season     string    `json:"season" form:"season"`
	SoilType   string    `json:"soil_type" form:"soil_type"`
	Irrigation string    `gorm:"size:4096" json:"irrigation" form:"irrigation"`
	Fertilizer string    `gorm:"size:4096" json:"fertilizer" form:"fertilizer"`
	Harvest    string    `gorm:"size:4096" json:"harvest" form:"harvest"`
	Content    string    `gorm:"size:8192" json:"content" form:"content"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName Specify table name
func (CropGuide) TableName() string {
	return "mkt_crop_guide"
}

// CropPest rows are per-language: the English and Tamil entries for the same
// pest are separate rows keyed (crop, language, name), unlike Product which
// carries translation columns.
type CropPest struct {
	ID        int64     `json:"id,string" form:"id"`
	CropID    int64     `gorm:"index:idx_pest_crop_lang_name,unique" json:"crop_id,string" form:"crop_id"`
	Language  string    `gorm:"index:idx_pest_crop_lang_name,unique;size:8" json:"language" form:"language"`
	Name      string    `gorm:"index:idx_pest_crop_lang_name,unique;size:256" json:"name" form:"name"`
	Symptoms  string    `gorm:"size:4096" json:"symptoms" form:"symptoms"`
	Treatment string    `gorm:"size:4096" json:"treatment" form:"treatment"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName Specify table name
func (CropPest) TableName() string {
	return "mkt_crop_pest"
}

type CropDisease struct {
	ID        int64     `json:"id,string" form:"id"`
	CropID    int64     `gorm:"index:idx_disease_crop_lang_name,unique" json:"crop_id,string" form:"crop_id"`
	Language  string    `gorm:"index:idx_disease_crop_lang_name,unique;size:8" json:"language" form:"language"`
	Name      string    `gorm:"index:idx_disease_crop_lang_name,unique;size:256" json:"name" form:"name"`
	Symptoms  string    `gorm:"size:4096" json:"symptoms" form:"symptoms"`
	Treatment string    `gorm:"size:4096" json:"treatment" form:"treatment"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName Specify table name
func (CropDisease) TableName() string {
	return "mkt_crop_disease"
}

type PestImage struct {
	ID        int64     `json:"id,string" form:"id"`
	PestID    int64     `gorm:"index" json:"pest_id,string" form:"pest_id"`
	URL       string    `gorm:"size:1024" json:"url" form:"url"`
	Caption   string    `json:"caption" form:"caption"`
	Language  string    `gorm:"size:8" json:"language" form:"language"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName Specify table name
func (PestImage) TableName() string {
	return "mkt_pest_image"
}

type DiseaseImage struct {
	ID        int64     `json:"id,string" form:"id"`
	DiseaseID int64     `gorm:"index" json:"disease_id,string" form:"disease_id"`
	URL       string    `gorm:"size:1024" json:"url" form:"url"`
	Caption   string    `json:"caption" form:"caption"`
	Language  string    `gorm:"size:8" json:"language" form:"language"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName Specify table name
func (DiseaseImage) TableName() string {
	return "mkt_disease_image"
}
