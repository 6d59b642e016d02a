package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/fintrackr/backend/internal/model"
	"github.com/fintrackr/backend/internal/store"
)

// defaultCategories are the shared categories every account sees. They are
// not owned by any user and live outside the per-user uniqueness rule.
var defaultCategories = []struct {
	name  string
	ctype model.CategoryType
	icon  string
	color string
}{
	{"Groceries", model.CategoryTypeExpense, "shopping-cart", "#4CAF50"},
	{"Rent", model.CategoryTypeExpense, "home", "#2196F3"},
	{"Transport", model.CategoryTypeExpense, "car", "#FF9800"},
	{"Utilities", model.CategoryTypeExpense, "bolt", "#9C27B0"},
	{"Entertainment", model.CategoryTypeExpense, "film", "#E91E63"},
	{"Healthcare", model.CategoryTypeExpense, "heart", "#F44336"},
	{"Other", model.CategoryTypeExpense, "tag", "#607D8B"},
	{"Salary", model.CategoryTypeIncome, "briefcase", "#4CAF50"},
	{"Freelance", model.CategoryTypeIncome, "laptop", "#00BCD4"},
	{"Interest", model.CategoryTypeIncome, "percent", "#8BC34A"},
	{"Other", model.CategoryTypeIncome, "tag", "#607D8B"},
}

// SeedDefaultCategories creates any missing default categories. It runs
// once at startup and is idempotent.
func SeedDefaultCategories(ctx context.Context, s store.Store) error {
	existing, err := s.ListCategories(ctx, "", "")
	if err != nil {
		return fmt.Errorf("failed to list categories: %w", err)
	}

	present := make(map[string]bool)
	for _, category := range existing {
		if category.IsDefault {
			present[string(category.Type)+"/"+strings.ToLower(category.Name)] = true
		}
	}

	created := 0
	for _, seed := range defaultCategories {
		if present[string(seed.ctype)+"/"+strings.ToLower(seed.name)] {
			continue
		}
		now := time.Now()
		category := &model.Category{
			Name:      seed.name,
			Type:      seed.ctype,
			Icon:      seed.icon,
			Color:     seed.color,
			IsDefault: true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.CreateCategory(ctx, category); err != nil {
			return fmt.Errorf("failed to seed category %q: %w", seed.name, err)
		}
		created++
	}

	if created > 0 {
		log.Printf("[Seed] created %d default categories", created)
	}
	return nil
}
