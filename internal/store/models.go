package store

import (
	"time"

	"gorm.io/gorm"
)

// Meme is one generated meme slot. The row is created when the batch is
// requested and filled in as the pipeline completes.
type Meme struct {
	UUID           string  `gorm:"column:uuid;primaryKey"`
	Context        string  `gorm:"column:context"`
	MemeTemplateID *int64  `gorm:"column:meme_template_id"`
	TextBox1       *string `gorm:"column:text_box_1"`
	TextBox2       *string `gorm:"column:text_box_2"`
	TextBox3       *string `gorm:"column:text_box_3"`
	TextBox4       *string `gorm:"column:text_box_4"`
	TextBox5       *string `gorm:"column:text_box_5"`
	TextBox6       *string `gorm:"column:text_box_6"`
	TextBox7       *string `gorm:"column:text_box_7"`
	MemeCdnURL     *string `gorm:"column:meme_cdn_url"`
	ThumbsUp       int     `gorm:"column:thumbs_up"`
	ThumbsDown     int     `gorm:"column:thumbs_down"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Meme) TableName() string { return "memes" }

// Captions returns the seven text box values in slot order.
func (m Meme) Captions() [7]*string {
	return [7]*string{m.TextBox1, m.TextBox2, m.TextBox3, m.TextBox4, m.TextBox5, m.TextBox6, m.TextBox7}
}

// MemeTemplate mirrors the template catalog rows kept in Postgres. The
// vector index is the search surface; this table is the system of record.
type MemeTemplate struct {
	ID          int64  `gorm:"column:id;primaryKey"`
	Name        string `gorm:"column:name"`
	Description string `gorm:"column:description"`
	ImageRef    string `gorm:"column:image_ref"`
	BoxCount    int    `gorm:"column:box_count"`
	BoxGeometry []byte `gorm:"column:box_geometry;type:jsonb"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (MemeTemplate) TableName() string { return "meme_templates" }

// AutoMigrate creates or updates the schema. Intended for development and
// tests; production uses migrations.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&Meme{}, &MemeTemplate{})
}
