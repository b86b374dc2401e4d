package devapi

import (
	"context"
	"time"

	"gorm.io/gorm/clause"
)

// Seed inserts the sample users and products. Existing rows are left alone.
func (s *Store) Seed(ctx context.Context) error {
	now := time.Now().UTC()
	users := []User{
		{Username: "alice", Email: "alice@example.com", CreatedAt: now},
		{Username: "bob", Email: "bob@example.com", CreatedAt: now},
		{Username: "carol", Email: "carol@example.com", CreatedAt: now},
	}
	db := s.db.WithContext(ctx)
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&users).Error; err != nil {
		return err
	}

	var products int64
	if err := db.Model(&Product{}).Count(&products).Error; err != nil {
		return err
	}
	if products > 0 {
		return nil
	}
	return db.Create(&[]Product{
		{Name: "Laptop", Description: "14 inch ultrabook", Price: 1299.99, Stock: 12, CreatedAt: now},
		{Name: "Mouse", Description: "Wireless mouse", Price: 24.5, Stock: 150, CreatedAt: now},
		{Name: "Keyboard", Description: "Mechanical keyboard", Price: 89, Stock: 0, CreatedAt: now},
	}).Error
}
