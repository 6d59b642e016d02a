package service

import (
	"net/http"

	"github.com/fintrackr/backend/internal/auth"
	"github.com/fintrackr/backend/internal/market"
	"github.com/fintrackr/backend/internal/store"
	"github.com/gorilla/mux"
)

// FinanceService holds the handlers for every API endpoint. The store and
// price source are injected once at startup; handlers never branch on which
// backend they received.
type FinanceService struct {
	store  store.Store
	prices market.PriceSource
	tokens *auth.TokenIssuer
}

// NewFinanceService creates the service with its collaborators.
func NewFinanceService(s store.Store, prices market.PriceSource, tokens *auth.TokenIssuer) *FinanceService {
	return &FinanceService{
		store:  s,
		prices: prices,
		tokens: tokens,
	}
}

// Router assembles all routes. Everything under the guarded subrouter runs
// behind the auth middleware; no ledger or portfolio handler is reachable
// without a resolved identity.
func (s *FinanceService) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/auth/register", s.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", s.Login).Methods(http.MethodPost)

	authed := api.NewRoute().Subrouter()
	authed.Use(auth.Middleware(s.tokens, s.store))

	authed.HandleFunc("/auth/me", s.GetMe).Methods(http.MethodGet)
	authed.HandleFunc("/users/me", s.UpdateProfile).Methods(http.MethodPut)
	authed.HandleFunc("/users/me/password", s.ChangePassword).Methods(http.MethodPut)
	authed.HandleFunc("/users/me", s.DeleteAccount).Methods(http.MethodDelete)

	authed.HandleFunc("/categories", s.ListCategories).Methods(http.MethodGet)
	authed.HandleFunc("/categories", s.CreateCategory).Methods(http.MethodPost)
	authed.HandleFunc("/categories/{id}", s.UpdateCategory).Methods(http.MethodPut)
	authed.HandleFunc("/categories/{id}", s.DeleteCategory).Methods(http.MethodDelete)

	authed.HandleFunc("/expenses", s.ListExpenses).Methods(http.MethodGet)
	authed.HandleFunc("/expenses", s.CreateExpense).Methods(http.MethodPost)
	authed.HandleFunc("/expenses/{id}", s.GetExpense).Methods(http.MethodGet)
	authed.HandleFunc("/expenses/{id}", s.UpdateExpense).Methods(http.MethodPut)
	authed.HandleFunc("/expenses/{id}", s.DeleteExpense).Methods(http.MethodDelete)

	authed.HandleFunc("/income", s.ListIncomes).Methods(http.MethodGet)
	authed.HandleFunc("/income", s.CreateIncome).Methods(http.MethodPost)
	authed.HandleFunc("/income/{id}", s.GetIncome).Methods(http.MethodGet)
	authed.HandleFunc("/income/{id}", s.UpdateIncome).Methods(http.MethodPut)
	authed.HandleFunc("/income/{id}", s.DeleteIncome).Methods(http.MethodDelete)

	// refresh must register before the {id} routes.
	authed.HandleFunc("/investments/refresh", s.RefreshInvestmentPrices).Methods(http.MethodPost)
	authed.HandleFunc("/investments", s.ListInvestments).Methods(http.MethodGet)
	authed.HandleFunc("/investments", s.CreateInvestment).Methods(http.MethodPost)
	authed.HandleFunc("/investments/{id}", s.GetInvestment).Methods(http.MethodGet)
	authed.HandleFunc("/investments/{id}", s.UpdateInvestment).Methods(http.MethodPut)
	authed.HandleFunc("/investments/{id}", s.DeleteInvestment).Methods(http.MethodDelete)

	authed.HandleFunc("/portfolio/summary", s.GetPortfolioSummary).Methods(http.MethodGet)
	authed.HandleFunc("/market/quote/{symbol}", s.GetQuote).Methods(http.MethodGet)

	authed.HandleFunc("/notifications", s.ListNotifications).Methods(http.MethodGet)
	authed.HandleFunc("/notifications", s.CreateNotification).Methods(http.MethodPost)
	authed.HandleFunc("/notifications/{id}/apply", s.ApplyNotification).Methods(http.MethodPost)
	authed.HandleFunc("/notifications/{id}/ignore", s.IgnoreNotification).Methods(http.MethodPost)
	authed.HandleFunc("/notifications/{id}", s.GetNotification).Methods(http.MethodGet)
	authed.HandleFunc("/notifications/{id}", s.DeleteNotification).Methods(http.MethodDelete)

	return r
}
