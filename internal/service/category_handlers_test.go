package service

import (
	"net/http"
	"testing"

	"github.com/fintrackr/backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListCategories(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "Ada Lovelace", "ada@example.com")

	t.Run("includes seeded defaults", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/categories", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Categories []model.Category `json:"categories"`
		}
		decode(t, rec, &resp)
		assert.Len(t, resp.Categories, len(defaultCategories))
	})

	t.Run("type filter narrows the result", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/categories?type=income", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Categories []model.Category `json:"categories"`
		}
		decode(t, rec, &resp)
		require.NotEmpty(t, resp.Categories)
		for _, category := range resp.Categories {
			assert.Equal(t, model.CategoryTypeIncome, category.Type)
		}
	})

	t.Run("unknown type is rejected", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/categories?type=savings", token, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestCreateCategory(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "Ada Lovelace", "ada@example.com")

	t.Run("creates a user-owned category", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/categories", token, map[string]interface{}{
			"name":          "Coffee",
			"type":          "expense",
			"monthlyBudget": 60.0,
		})
		require.Equal(t, http.StatusCreated, rec.Code)

		var category model.Category
		decode(t, rec, &category)
		assert.Equal(t, "Coffee", category.Name)
		assert.False(t, category.IsDefault)
		assert.Equal(t, 60.0, category.MonthlyBudget)
	})

	t.Run("same name and type conflicts", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/categories", token, map[string]interface{}{
			"name": "coffee",
			"type": "expense",
		})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("same name with a different type is allowed", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/categories", token, map[string]interface{}{
			"name": "Coffee",
			"type": "income",
		})
		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("a default name can be shadowed", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/categories", token, map[string]interface{}{
			"name": "Groceries",
			"type": "expense",
		})
		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("another user can reuse the name", func(t *testing.T) {
		otherToken := env.register(t, "Grace Hopper", "grace@example.com")
		rec := env.do(t, http.MethodPost, "/api/categories", otherToken, map[string]interface{}{
			"name": "Coffee",
			"type": "expense",
		})
		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("missing fields fail validation", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/categories", token, map[string]interface{}{})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestUpdateCategory(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "Ada Lovelace", "ada@example.com")

	created := env.do(t, http.MethodPost, "/api/categories", token, map[string]interface{}{
		"name": "Coffee",
		"type": "expense",
	})
	require.Equal(t, http.StatusCreated, created.Code)
	var category model.Category
	decode(t, created, &category)

	t.Run("renames the category", func(t *testing.T) {
		rec := env.do(t, http.MethodPut, "/api/categories/"+category.ID, token, map[string]interface{}{
			"name": "Caffeine",
		})
		require.Equal(t, http.StatusOK, rec.Code)

		var updated model.Category
		decode(t, rec, &updated)
		assert.Equal(t, "Caffeine", updated.Name)
	})

	t.Run("type changes are rejected", func(t *testing.T) {
		rec := env.do(t, http.MethodPut, "/api/categories/"+category.ID, token, map[string]interface{}{
			"type": "income",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("defaults cannot be edited", func(t *testing.T) {
		groceries := env.defaultCategory(t, "Groceries", model.CategoryTypeExpense)
		rec := env.do(t, http.MethodPut, "/api/categories/"+groceries.ID, token, map[string]interface{}{
			"name": "Mine Now",
		})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("another user's category reads as not found", func(t *testing.T) {
		otherToken := env.register(t, "Grace Hopper", "grace@example.com")
		rec := env.do(t, http.MethodPut, "/api/categories/"+category.ID, otherToken, map[string]interface{}{
			"name": "Stolen",
		})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestDeleteCategory(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "Ada Lovelace", "ada@example.com")

	t.Run("an unreferenced category can be deleted", func(t *testing.T) {
		created := env.do(t, http.MethodPost, "/api/categories", token, map[string]interface{}{
			"name": "Fleeting",
			"type": "expense",
		})
		require.Equal(t, http.StatusCreated, created.Code)
		var category model.Category
		decode(t, created, &category)

		rec := env.do(t, http.MethodDelete, "/api/categories/"+category.ID, token, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("a referenced category is protected", func(t *testing.T) {
		created := env.do(t, http.MethodPost, "/api/categories", token, map[string]interface{}{
			"name": "Coffee",
			"type": "expense",
		})
		require.Equal(t, http.StatusCreated, created.Code)
		var category model.Category
		decode(t, created, &category)

		expense := env.do(t, http.MethodPost, "/api/expenses", token, map[string]interface{}{
			"amount":      4.50,
			"description": "Flat white",
			"categoryId":  category.ID,
		})
		require.Equal(t, http.StatusCreated, expense.Code)

		rec := env.do(t, http.MethodDelete, "/api/categories/"+category.ID, token, nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Contains(t, rec.Body.String(), "referenced")
	})

	t.Run("defaults cannot be deleted", func(t *testing.T) {
		groceries := env.defaultCategory(t, "Groceries", model.CategoryTypeExpense)
		rec := env.do(t, http.MethodDelete, "/api/categories/"+groceries.ID, token, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
