package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/STTM-NSU/crypto-dashboard/internal/dashboard"
	"github.com/STTM-NSU/crypto-dashboard/internal/portfolio"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type viewRequest struct {
	View string `json:"view"`
}

type holdingsResponse struct {
	Notification dashboard.Notification  `json:"notification"`
	Portfolio    dashboard.PortfolioView `json:"portfolio"`
}

type marketResponse struct {
	dashboard.MarketView
	Error string `json:"error,omitempty"`
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Errorf("%s: %s %s failed", err, r.Method, r.URL.Path)
	} else {
		h.logger.Debugf("%s: %s %s rejected with %d", err, r.Method, r.URL.Path, status)
	}
	WriteError(w, status, errorMessage(err, status))
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeBody(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	n, err := h.d.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, n)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeBody(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	n, err := h.d.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, n)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.d.Logout(r.Context()); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSession(w http.ResponseWriter, r *http.Request) {
	s, err := h.d.Session(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, s)
}

func (h *Handler) handleCoins(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, h.d.Market())
}

// handleRefresh answers with the list view even when the fetch fails so the
// client keeps showing the previous coins next to the error banner.
func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	v, err := h.d.Refresh(r.Context())
	if err != nil {
		status := statusFor(err)
		h.logger.Debugf("%s: refresh failed with %d", err, status)
		WriteJSON(w, status, marketResponse{MarketView: v, Error: errorMessage(err, status)})
		return
	}
	WriteJSON(w, http.StatusOK, v)
}

func (h *Handler) handleCoinDetail(w http.ResponseWriter, r *http.Request) {
	v, err := h.d.OpenCoin(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, v)
}

func (h *Handler) handleCloseDetail(w http.ResponseWriter, _ *http.Request) {
	h.d.CloseCoin()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleChart(w http.ResponseWriter, r *http.Request) {
	png, err := h.d.Chart(r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

func (h *Handler) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	v, err := h.d.Portfolio(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, v)
}

func (h *Handler) handleAddHolding(w http.ResponseWriter, r *http.Request) {
	var req dashboard.AddHoldingRequest
	if err := decodeBody(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	n, v, err := h.d.AddToPortfolio(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, holdingsResponse{Notification: n, Portfolio: v})
}

func (h *Handler) handleRemoveHolding(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		h.fail(w, r, fmt.Errorf("%w: %q", portfolio.IndexOutOfRangeError, r.PathValue("index")))
		return
	}

	n, v, err := h.d.RemoveFromPortfolio(r.Context(), index)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, holdingsResponse{Notification: n, Portfolio: v})
}

func (h *Handler) handleSetView(w http.ResponseWriter, r *http.Request) {
	var req viewRequest
	if err := decodeBody(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	if err := h.d.SetView(req.View); err != nil {
		h.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, h.d.Market())
}
