package server

import (
	"net/http"

	"github.com/STTM-NSU/crypto-dashboard/internal/dashboard"
	"github.com/STTM-NSU/crypto-dashboard/internal/logger"
)

type Handler struct {
	d      *dashboard.Dashboard
	logger logger.Logger
}

// NewHandler builds the REST API over d.
func NewHandler(d *dashboard.Dashboard, logger logger.Logger) http.Handler {
	h := &Handler{d: d, logger: logger}

	mux := http.NewServeMux()
	h.registerRoutes(mux)

	return requestMiddleware(logger)(mux)
}

func (h *Handler) registerRoutes(mux *http.ServeMux) {
	// Auth
	mux.HandleFunc("POST /api/register", h.handleRegister)
	mux.HandleFunc("POST /api/login", h.handleLogin)
	mux.HandleFunc("POST /api/logout", h.handleLogout)
	mux.HandleFunc("GET /api/session", h.handleSession)

	// Market
	mux.HandleFunc("GET /api/coins", h.handleCoins)
	mux.HandleFunc("POST /api/coins/refresh", h.handleRefresh)
	mux.HandleFunc("GET /api/coins/{id}", h.handleCoinDetail)
	mux.HandleFunc("DELETE /api/coins/detail", h.handleCloseDetail)
	mux.HandleFunc("GET /api/coins/{id}/chart.png", h.handleChart)

	// Portfolio
	mux.HandleFunc("GET /api/portfolio", h.handlePortfolio)
	mux.HandleFunc("POST /api/portfolio/holdings", h.handleAddHolding)
	mux.HandleFunc("DELETE /api/portfolio/holdings/{index}", h.handleRemoveHolding)

	mux.HandleFunc("PUT /api/view", h.handleSetView)
}
