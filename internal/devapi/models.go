package devapi

import (
	"time"

	"github.com/dracory/slidebase/internal/dbapi"
)

// isoLayout matches the naive ISO timestamps the /db contract uses.
const isoLayout = "2006-01-02T15:04:05.999999"

func iso(t time.Time) string {
	return t.UTC().Format(isoLayout)
}

// PresentationFile is one uploaded deck.
type PresentationFile struct {
	ID               uint      `gorm:"primaryKey;column:id"`
	Filename         string    `gorm:"column:filename;size:255;not null"`
	OriginalFilename string    `gorm:"column:original_filename;size:255;not null"`
	UploadedAt       time.Time `gorm:"column:uploaded_at;not null"`
	SlideCount       int       `gorm:"column:slide_count;not null;default:0"`
	URLCount         int       `gorm:"column:url_count;not null;default:0"`
}

func (PresentationFile) TableName() string { return "presentation_files" }

func (f PresentationFile) toFileRecord() dbapi.FileRecord {
	return dbapi.FileRecord{
		ID:               int64(f.ID),
		Filename:         f.Filename,
		OriginalFilename: f.OriginalFilename,
		UploadedAt:       iso(f.UploadedAt),
		SlideCount:       f.SlideCount,
		URLCount:         f.URLCount,
	}
}

func (f PresentationFile) toRecord() dbapi.Record {
	return dbapi.RecordOf(
		"id", f.ID,
		"filename", f.Filename,
		"original_filename", f.OriginalFilename,
		"uploaded_at", iso(f.UploadedAt),
		"slide_count", f.SlideCount,
		"url_count", f.URLCount,
	)
}

// PresentationSlide is one slide of an uploaded deck.
type PresentationSlide struct {
	ID          uint              `gorm:"primaryKey;column:id"`
	SlideNumber int               `gorm:"column:slide_number;not null"`
	Text        string            `gorm:"column:text;type:text"`
	SourceFile  string            `gorm:"column:source_file;size:255"`
	FileID      *uint             `gorm:"column:file_id;index"`
	CreatedAt   time.Time         `gorm:"column:created_at"`
	File        *PresentationFile `gorm:"foreignKey:FileID"`
	URLs        []SlideURL        `gorm:"foreignKey:SlideID"`
}

func (PresentationSlide) TableName() string { return "presentation_slides" }

func (s PresentationSlide) toRecord() dbapi.Record {
	var fileID any
	if s.FileID != nil {
		fileID = *s.FileID
	}
	var fileName any
	if s.File != nil {
		fileName = s.File.OriginalFilename
	}
	urls := make([]any, 0, len(s.URLs))
	for _, u := range s.URLs {
		urls = append(urls, map[string]any{"url": u.URL, "link_text": u.LinkText})
	}
	return dbapi.RecordOf(
		"id", s.ID,
		"slide_number", s.SlideNumber,
		"text", s.Text,
		"source_file", s.SourceFile,
		"file_id", fileID,
		"file_name", fileName,
		"created_at", iso(s.CreatedAt),
		"urls", urls,
		"url_count", len(s.URLs),
	)
}

// SlideURL is one hyperlink found on a slide.
type SlideURL struct {
	ID        uint      `gorm:"primaryKey;column:id"`
	SlideID   uint      `gorm:"column:slide_id;not null;index"`
	URL       string    `gorm:"column:url;type:text;not null"`
	LinkText  string    `gorm:"column:link_text;type:text"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (SlideURL) TableName() string { return "slide_urls" }

func (u SlideURL) toRecord() dbapi.Record {
	return dbapi.RecordOf(
		"id", u.ID,
		"slide_id", u.SlideID,
		"url", u.URL,
		"link_text", u.LinkText,
		"created_at", iso(u.CreatedAt),
	)
}

// User is a sample table.
type User struct {
	ID        uint      `gorm:"primaryKey;column:id"`
	Username  string    `gorm:"column:username;size:80;uniqueIndex;not null"`
	Email     string    `gorm:"column:email;size:120;uniqueIndex;not null"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (User) TableName() string { return "users" }

func (u User) toRecord() dbapi.Record {
	return dbapi.RecordOf(
		"id", u.ID,
		"username", u.Username,
		"email", u.Email,
		"created_at", iso(u.CreatedAt),
	)
}

// Product is a sample table.
type Product struct {
	ID          uint      `gorm:"primaryKey;column:id"`
	Name        string    `gorm:"column:name;size:100;not null"`
	Description string    `gorm:"column:description;type:text"`
	Price       float64   `gorm:"column:price;not null"`
	Stock       int       `gorm:"column:stock;default:0"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (Product) TableName() string { return "products" }

func (p Product) toRecord() dbapi.Record {
	return dbapi.RecordOf(
		"id", p.ID,
		"name", p.Name,
		"description", p.Description,
		"price", p.Price,
		"stock", p.Stock,
		"created_at", iso(p.CreatedAt),
	)
}
