// Package devapi is a development stand-in for the /db backend. It stores
// tables and uploaded presentations with gorm and serves the same wire
// contract the admin view consumes.
package devapi

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dracory/slidebase/internal/dbapi"
	"github.com/dracory/slidebase/shared/constants"
	"github.com/dracory/slidebase/shared/driver"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

var (
	// ErrTableNotFound is returned for table names outside the registry.
	ErrTableNotFound = errors.New("table not found")
	// ErrRecordNotFound is returned when a row or file id does not exist.
	ErrRecordNotFound = errors.New("record not found")
)

// tableDef describes one browsable table.
type tableDef struct {
	name    string
	display string
	model   any
	list    func(db *gorm.DB) ([]dbapi.Record, error)
	get     func(db *gorm.DB, id uint) (dbapi.Record, error)
}

// Store is the gorm-backed data layer of the dev API.
type Store struct {
	db     *gorm.DB
	driver string
	tables []tableDef
}

// Open connects with the given driver and DSN and migrates the schema.
func Open(driverName, dsn string) (*Store, error) {
	canonical, err := driver.Normalize(driverName)
	if err != nil {
		return nil, err
	}
	db, err := driver.Open(canonical, dsn)
	if err != nil {
		return nil, err
	}
	if canonical == constants.DriverSQLite {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return NewStore(db, canonical)
}

// NewStore wraps an open connection and migrates the schema.
func NewStore(db *gorm.DB, driverName string) (*Store, error) {
	s := &Store{db: db, driver: driverName}
	s.tables = []tableDef{
		{"presentation_files", "Presentation Files", &PresentationFile{}, listOf[PresentationFile], getOf[PresentationFile]},
		{"presentation_slides", "Presentation Slides", &PresentationSlide{}, listSlides, getSlide},
		{"slide_urls", "Slide URLs", &SlideURL{}, listOf[SlideURL], getOf[SlideURL]},
		{"users", "Users", &User{}, listOf[User], getOf[User]},
		{"products", "Products", &Product{}, listOf[Product], getOf[Product]},
	}

	models := lo.Map(s.tables, func(t tableDef, _ int) any { return t.model })
	if err := db.AutoMigrate(models...); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Driver returns the canonical driver name.
func (s *Store) Driver() string { return s.driver }

// Close releases the connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Tables lists every browsable table with its row count.
func (s *Store) Tables(ctx context.Context) ([]dbapi.TableSummary, error) {
	out := make([]dbapi.TableSummary, 0, len(s.tables))
	for _, t := range s.tables {
		var n int64
		if err := s.db.WithContext(ctx).Model(t.model).Count(&n).Error; err != nil {
			return nil, fmt.Errorf("count %s: %w", t.name, err)
		}
		out = append(out, dbapi.TableSummary{Name: t.name, DisplayName: t.display, Count: n})
	}
	return out, nil
}

// Records returns every row of the named table.
func (s *Store) Records(ctx context.Context, name string) ([]dbapi.Record, error) {
	t, err := s.lookup(name)
	if err != nil {
		return nil, err
	}
	return t.list(s.db.WithContext(ctx))
}

// Record returns one row of the named table.
func (s *Store) Record(ctx context.Context, name string, id uint) (dbapi.Record, error) {
	t, err := s.lookup(name)
	if err != nil {
		return dbapi.Record{}, err
	}
	rec, err := t.get(s.db.WithContext(ctx), id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return dbapi.Record{}, ErrRecordNotFound
	}
	return rec, err
}

func (s *Store) lookup(name string) (tableDef, error) {
	t, ok := lo.Find(s.tables, func(t tableDef) bool { return t.name == name })
	if !ok {
		return tableDef{}, fmt.Errorf("%w: %s", ErrTableNotFound, name)
	}
	return t, nil
}

// Files lists uploaded presentations, newest first.
func (s *Store) Files(ctx context.Context) ([]dbapi.FileRecord, error) {
	var files []PresentationFile
	if err := s.db.WithContext(ctx).Order("uploaded_at DESC, id DESC").Find(&files).Error; err != nil {
		return nil, err
	}
	return lo.Map(files, func(f PresentationFile, _ int) dbapi.FileRecord { return f.toFileRecord() }), nil
}

// AddFile stores an indexed presentation with its slides and links.
func (s *Store) AddFile(ctx context.Context, originalName string, deck *Deck) (*PresentationFile, error) {
	now := time.Now().UTC()
	file := &PresentationFile{
		Filename:         storedName(originalName, now),
		OriginalFilename: originalName,
		UploadedAt:       now,
		SlideCount:       len(deck.Slides),
		URLCount:         deck.URLCount(),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(file).Error; err != nil {
			return err
		}
		for _, sl := range deck.Slides {
			slide := PresentationSlide{
				SlideNumber: sl.Number,
				Text:        sl.Text,
				SourceFile:  originalName,
				FileID:      &file.ID,
				CreatedAt:   now,
				URLs: lo.Map(sl.Links, func(l Link, _ int) SlideURL {
					return SlideURL{URL: l.URL, LinkText: l.Text, CreatedAt: now}
				}),
			}
			if err := tx.Create(&slide).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("store %s: %w", originalName, err)
	}
	return file, nil
}

// DeleteFile removes a file with its slides and links and reports how many
// slides and links went with it.
func (s *Store) DeleteFile(ctx context.Context, id uint) (slides, urls int64, err error) {
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var file PresentationFile
		if err := tx.First(&file, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRecordNotFound
			}
			return err
		}

		var slideIDs []uint
		if err := tx.Model(&PresentationSlide{}).Where("file_id = ?", id).Pluck("id", &slideIDs).Error; err != nil {
			return err
		}
		if len(slideIDs) > 0 {
			res := tx.Where("slide_id IN ?", slideIDs).Delete(&SlideURL{})
			if res.Error != nil {
				return res.Error
			}
			urls = res.RowsAffected
		}
		res := tx.Where("file_id = ?", id).Delete(&PresentationSlide{})
		if res.Error != nil {
			return res.Error
		}
		slides = res.RowsAffected
		return tx.Delete(&file).Error
	})
	return slides, urls, err
}

// ClearCounts reports what Clear removed.
type ClearCounts struct {
	Files  int64
	Slides int64
	URLs   int64
}

// Clear removes every presentation file, slide and link. Sample tables are kept.
func (s *Store) Clear(ctx context.Context) (ClearCounts, error) {
	var counts ClearCounts
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		all := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		steps := []struct {
			model any
			n     *int64
		}{
			{&SlideURL{}, &counts.URLs},
			{&PresentationSlide{}, &counts.Slides},
			{&PresentationFile{}, &counts.Files},
		}
		for _, step := range steps {
			res := all.Delete(step.model)
			if res.Error != nil {
				return res.Error
			}
			*step.n = res.RowsAffected
		}
		return nil
	})
	return counts, err
}

func listOf[T interface{ toRecord() dbapi.Record }](db *gorm.DB) ([]dbapi.Record, error) {
	var rows []T
	if err := db.Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	return lo.Map(rows, func(r T, _ int) dbapi.Record { return r.toRecord() }), nil
}

func getOf[T interface{ toRecord() dbapi.Record }](db *gorm.DB, id uint) (dbapi.Record, error) {
	var row T
	if err := db.First(&row, id).Error; err != nil {
		return dbapi.Record{}, err
	}
	return row.toRecord(), nil
}

func listSlides(db *gorm.DB) ([]dbapi.Record, error) {
	var slides []PresentationSlide
	if err := db.Preload("URLs").Preload("File").Order("id").Find(&slides).Error; err != nil {
		return nil, err
	}
	return lo.Map(slides, func(s PresentationSlide, _ int) dbapi.Record { return s.toRecord() }), nil
}

func getSlide(db *gorm.DB, id uint) (dbapi.Record, error) {
	var slide PresentationSlide
	if err := db.Preload("URLs").Preload("File").First(&slide, id).Error; err != nil {
		return dbapi.Record{}, err
	}
	return slide.toRecord(), nil
}

// storedName is the unique on-disk style name recorded for an upload.
func storedName(original string, at time.Time) string {
	base := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		}
		return '_'
	}, original)
	return at.Format("20060102_150405_") + base
}
