package service

import (
	"net/http"
	"testing"

	"github.com/fintrackr/backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	env := newTestEnv(t)

	t.Run("creates a user and returns a token", func(t *testing.T) {
		token := env.register(t, "Ada Lovelace", "ada@example.com")

		rec := env.do(t, http.MethodGet, "/api/auth/me", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var user model.User
		decode(t, rec, &user)
		assert.Equal(t, "Ada Lovelace", user.Name)
		assert.Equal(t, "ada@example.com", user.Email)
		assert.Equal(t, "USD", user.Currency)
	})

	t.Run("rejects a duplicate email", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
			"name":     "Ada Again",
			"email":    "ada@example.com",
			"password": "hunter22",
		})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("duplicate check is case-insensitive", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
			"name":     "Ada Again",
			"email":    "ADA@Example.com",
			"password": "hunter22",
		})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("rejects a short password", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
			"name":     "Bob",
			"email":    "bob@example.com",
			"password": "12345",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "password")
	})

	t.Run("rejects a malformed email", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
			"name":     "Bob",
			"email":    "not-an-email",
			"password": "hunter22",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "Ada Lovelace", "ada@example.com")

	t.Run("valid credentials return a token", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
			"email":    "ada@example.com",
			"password": "hunter22",
		})
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Token string `json:"token"`
		}
		decode(t, rec, &resp)
		assert.NotEmpty(t, resp.Token)
	})

	t.Run("email lookup is case-insensitive", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
			"email":    "ADA@example.com",
			"password": "hunter22",
		})
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("wrong password and unknown email are indistinguishable", func(t *testing.T) {
		wrongPassword := env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
			"email":    "ada@example.com",
			"password": "wrong-password",
		})
		unknownEmail := env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
			"email":    "nobody@example.com",
			"password": "hunter22",
		})

		assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
		assert.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
		assert.Equal(t, wrongPassword.Body.String(), unknownEmail.Body.String())
	})
}

func TestUpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "Ada Lovelace", "ada@example.com")

	t.Run("partial update keeps untouched fields", func(t *testing.T) {
		rec := env.do(t, http.MethodPut, "/api/users/me", token, map[string]string{
			"bio":      "Analyst",
			"currency": "GBP",
		})
		require.Equal(t, http.StatusOK, rec.Code)

		var user model.User
		decode(t, rec, &user)
		assert.Equal(t, "Ada Lovelace", user.Name)
		assert.Equal(t, "Analyst", user.Bio)
		assert.Equal(t, "GBP", user.Currency)
	})

	t.Run("empty name is rejected", func(t *testing.T) {
		rec := env.do(t, http.MethodPut, "/api/users/me", token, map[string]string{
			"name": "  ",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestChangePassword(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "Ada Lovelace", "ada@example.com")

	t.Run("wrong current password is rejected", func(t *testing.T) {
		rec := env.do(t, http.MethodPut, "/api/users/me/password", token, map[string]string{
			"currentPassword": "wrong",
			"newPassword":     "new-password",
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("new password works for login afterwards", func(t *testing.T) {
		rec := env.do(t, http.MethodPut, "/api/users/me/password", token, map[string]string{
			"currentPassword": "hunter22",
			"newPassword":     "new-password",
		})
		require.Equal(t, http.StatusOK, rec.Code)

		login := env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
			"email":    "ada@example.com",
			"password": "new-password",
		})
		assert.Equal(t, http.StatusOK, login.Code)

		oldLogin := env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
			"email":    "ada@example.com",
			"password": "hunter22",
		})
		assert.Equal(t, http.StatusUnauthorized, oldLogin.Code)
	})
}

func TestDeleteAccount(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "Ada Lovelace", "ada@example.com")

	groceries := env.defaultCategory(t, "Groceries", model.CategoryTypeExpense)
	created := env.do(t, http.MethodPost, "/api/expenses", token, map[string]interface{}{
		"amount":      12.50,
		"description": "Lunch",
		"categoryId":  groceries.ID,
	})
	require.Equal(t, http.StatusCreated, created.Code)

	rec := env.do(t, http.MethodDelete, "/api/users/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	t.Run("token stops resolving", func(t *testing.T) {
		me := env.do(t, http.MethodGet, "/api/auth/me", token, nil)
		assert.Equal(t, http.StatusUnauthorized, me.Code)
	})

	t.Run("owned data is purged but defaults survive", func(t *testing.T) {
		// A re-registration under the same email starts from a clean ledger.
		newToken := env.register(t, "Ada Lovelace", "ada@example.com")

		expenses := env.do(t, http.MethodGet, "/api/expenses", newToken, nil)
		require.Equal(t, http.StatusOK, expenses.Code)
		var resp struct {
			Expenses []model.Expense `json:"expenses"`
		}
		decode(t, expenses, &resp)
		assert.Empty(t, resp.Expenses)

		categories := env.do(t, http.MethodGet, "/api/categories", newToken, nil)
		require.Equal(t, http.StatusOK, categories.Code)
		var catResp struct {
			Categories []model.Category `json:"categories"`
		}
		decode(t, categories, &catResp)
		assert.NotEmpty(t, catResp.Categories)
	})
}
