package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
)

// VariantMeta describes one derived rendition of a stored media file.
type VariantMeta struct {
	Path   string `json:"path"`
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Bytes  int64  `json:"bytes"`
}

// SizesData is the structured map of derived-size metadata stored on a Media
// row, keyed by size name ("original", "thumbnail", ...). Persisted as JSON.
type SizesData map[string]VariantMeta

// Value implements driver.Valuer.
func (s SizesData) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

// Scan implements sql.Scanner.
func (s *SizesData) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return errors.New("unsupported type for SizesData")
	}
}

// Media is the metadata row for an uploaded file. Derived sizes are attached
// at creation time and are owned by this row: deleting the media deletes the
// primary file and every derived file.
type Media struct {
	ID               uint   `gorm:"primaryKey" json:"id"`
	OriginalFilename string `json:"original_filename"`
	Path             string `gorm:"not null" json:"path"`
	URL              string `gorm:"not null" json:"url"`
	MimeType         string `gorm:"type:varchar(64)" json:"mime_type"`
	SizeBytes        int64  `json:"size_bytes"`
	Width            *int   `json:"width,omitempty"`
	Height           *int   `json:"height,omitempty"`
	IsActive         bool   `gorm:"not null;default:true;index" json:"is_active"`

	SizesData SizesData `gorm:"type:text" json:"sizes_data,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// VariantPaths returns the storage paths of all derived renditions, excluding
// the primary file itself.
func (m *Media) VariantPaths() []string {
	paths := make([]string, 0, len(m.SizesData))
	for name, v := range m.SizesData {
		if name == "original" || v.Path == m.Path {
			continue
		}
		paths = append(paths, v.Path)
	}
	return paths
}
