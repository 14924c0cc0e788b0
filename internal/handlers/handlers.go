package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/jredh-dev/foodrescue/internal/dashboard"
	"github.com/jredh-dev/foodrescue/internal/donation"
	"github.com/jredh-dev/foodrescue/internal/expiry"
	"github.com/jredh-dev/foodrescue/internal/gamification"
	"github.com/jredh-dev/foodrescue/internal/models"
	"github.com/jredh-dev/foodrescue/internal/token"
)

// userNamespace derives stable user IDs from role and display name.
var userNamespace = uuid.MustParse("6f1c2e4a-93b7-4d0e-8a55-2c1f7b9e0d13")

// defaultNames are used when a login omits the display name.
var defaultNames = map[models.Role]string{
	models.RoleProvider: "Food Provider",
	models.RoleNGO:      "Rescue NGO",
	models.RoleAdmin:    "Admin",
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	donations *donation.Service
	builder   *dashboard.Builder
	scorer    *gamification.Scorer
	tokens    *token.Service
	tokenTTL  time.Duration
}

// New creates a new Handler.
func New(donations *donation.Service, builder *dashboard.Builder, scorer *gamification.Scorer, tokens *token.Service, tokenTTL time.Duration) *Handler {
	return &Handler{
		donations: donations,
		builder:   builder,
		scorer:    scorer,
		tokens:    tokens,
		tokenTTL:  tokenTTL,
	}
}

// Routes registers the API on r.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/expiry/predict", h.Predict)
		r.Get("/gamification", h.Gamification)

		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(h.tokens))

			r.With(RequireRole(models.RoleProvider)).Post("/donations", h.CreateDonation)
			r.With(RequireRole(models.RoleProvider)).Get("/provider/dashboard", h.ProviderDashboard)

			r.With(RequireRole(models.RoleNGO)).Get("/donations/available", h.AvailableDonations)
			r.With(RequireRole(models.RoleNGO)).Post("/donations/{id}/accept", h.AcceptDonation)
			r.With(RequireRole(models.RoleNGO)).Get("/ngo/dashboard", h.NGODashboard)

			r.With(RequireRole(models.RoleAdmin)).Get("/admin/stats", h.AdminStats)
			r.With(RequireRole(models.RoleAdmin)).Get("/donations", h.ListDonations)
		})
	})
}

// --- Login ---

type loginReq struct {
	Name string      `json:"name"`
	Role models.Role `json:"role"`
}

type loginResp struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

// Login issues a token for a role. There are no passwords.
// POST /api/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	req.Role = models.Role(strings.ToUpper(strings.TrimSpace(string(req.Role))))
	if !req.Role.Valid() {
		jsonError(w, "role must be PROVIDER, NGO or ADMIN", http.StatusBadRequest)
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = defaultNames[req.Role]
	}

	user := &models.User{
		ID:   uuid.NewSHA1(userNamespace, []byte(string(req.Role)+"\x00"+name)).String(),
		Name: name,
		Role: req.Role,
	}
	tok, err := h.tokens.GenerateToken(user, h.tokenTTL)
	if err != nil {
		slog.Error("generate token failed", "error", err)
		jsonError(w, "failed to issue token", http.StatusInternalServerError)
		return
	}
	jsonOK(w, http.StatusOK, loginResp{
		Token:     tok,
		ExpiresAt: time.Now().Add(h.tokenTTL).UTC(),
		User:      user,
	})
}

// --- Expiry and gamification previews ---

type predictReq struct {
	FoodType string                  `json:"type"`
	Storage  expiry.StorageCondition `json:"storage"`
	PrepDate string                  `json:"prep_date"`
}

// Predict returns an estimate without creating a donation.
// POST /api/expiry/predict
func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	var req predictReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	prepared, err := expiry.ParseTime(req.PrepDate, nil)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	jsonOK(w, http.StatusOK, h.donations.Preview(req.FoodType, req.Storage, prepared))
}

// Gamification returns the level and badge state for a point total.
// GET /api/gamification?points=N
func (h *Handler) Gamification(w http.ResponseWriter, r *http.Request) {
	points, err := strconv.Atoi(r.URL.Query().Get("points"))
	if err != nil {
		jsonError(w, "points must be an integer", http.StatusBadRequest)
		return
	}
	st, err := h.scorer.Score(points)
	if err != nil {
		if errors.Is(err, gamification.ErrNegativePoints) {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
		slog.Error("score failed", "points", points, "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	jsonOK(w, http.StatusOK, st)
}

// --- Provider ---

type createDonationReq struct {
	FoodType string                  `json:"type"`
	Quantity float64                 `json:"quantity"`
	PrepDate string                  `json:"prep_date"`
	Storage  expiry.StorageCondition `json:"storage"`
	Location models.Location         `json:"location"`
}

// CreateDonation posts a donation for the signed-in provider.
// POST /api/donations
func (h *Handler) CreateDonation(w http.ResponseWriter, r *http.Request) {
	user, _ := GetUserFromContext(r.Context())

	var req createDonationReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	prepared, err := expiry.ParseTime(req.PrepDate, nil)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	d, err := h.donations.Create(r.Context(), donation.CreateInput{
		ProviderID:   user.ID,
		ProviderName: user.Name,
		FoodType:     req.FoodType,
		Quantity:     req.Quantity,
		Storage:      req.Storage,
		PreparedAt:   prepared,
		Location:     req.Location,
	})
	if err != nil {
		writeServiceError(w, "create donation", err)
		return
	}
	jsonOK(w, http.StatusCreated, d)
}

// ProviderDashboard summarises the signed-in provider's donations.
// GET /api/provider/dashboard
func (h *Handler) ProviderDashboard(w http.ResponseWriter, r *http.Request) {
	user, _ := GetUserFromContext(r.Context())

	ds, err := h.donations.List(r.Context(), models.DonationFilter{ProviderID: user.ID})
	if err != nil {
		writeServiceError(w, "provider dashboard", err)
		return
	}
	dash, err := h.builder.Provider(ds)
	if err != nil {
		writeServiceError(w, "provider dashboard", err)
		return
	}
	jsonOK(w, http.StatusOK, dash)
}

// --- NGO ---

// AvailableDonations lists everything still open for pickup.
// GET /api/donations/available
func (h *Handler) AvailableDonations(w http.ResponseWriter, r *http.Request) {
	ds, err := h.donations.List(r.Context(), models.DonationFilter{Status: models.StatusAvailable})
	if err != nil {
		writeServiceError(w, "available donations", err)
		return
	}
	if ds == nil {
		ds = []*models.Donation{}
	}
	jsonOK(w, http.StatusOK, ds)
}

// AcceptDonation claims an available donation for the signed-in NGO.
// POST /api/donations/{id}/accept
func (h *Handler) AcceptDonation(w http.ResponseWriter, r *http.Request) {
	user, _ := GetUserFromContext(r.Context())
	id := chi.URLParam(r, "id")

	d, err := h.donations.Accept(r.Context(), id, user.Name)
	if err != nil {
		writeServiceError(w, "accept donation", err)
		return
	}
	jsonOK(w, http.StatusOK, d)
}

// NGODashboard summarises the signed-in NGO's pickups and open donations.
// GET /api/ngo/dashboard
func (h *Handler) NGODashboard(w http.ResponseWriter, r *http.Request) {
	user, _ := GetUserFromContext(r.Context())

	ds, err := h.donations.List(r.Context(), models.DonationFilter{})
	if err != nil {
		writeServiceError(w, "ngo dashboard", err)
		return
	}
	dash, err := h.builder.NGO(user.Name, ds)
	if err != nil {
		writeServiceError(w, "ngo dashboard", err)
		return
	}
	jsonOK(w, http.StatusOK, dash)
}

// --- Admin ---

// AdminStats returns platform-wide totals.
// GET /api/admin/stats
func (h *Handler) AdminStats(w http.ResponseWriter, r *http.Request) {
	ds, err := h.donations.List(r.Context(), models.DonationFilter{})
	if err != nil {
		writeServiceError(w, "admin stats", err)
		return
	}
	jsonOK(w, http.StatusOK, dashboard.AdminStats(ds))
}

// ListDonations lists donations, optionally filtered by status and provider.
// GET /api/donations?status=&provider=
func (h *Handler) ListDonations(w http.ResponseWriter, r *http.Request) {
	f := models.DonationFilter{
		ProviderID: r.URL.Query().Get("provider"),
		Status:     models.DonationStatus(r.URL.Query().Get("status")),
	}
	if f.Status != "" && !validStatus(f.Status) {
		jsonError(w, fmt.Sprintf("unknown status %q", f.Status), http.StatusBadRequest)
		return
	}

	ds, err := h.donations.List(r.Context(), f)
	if err != nil {
		writeServiceError(w, "list donations", err)
		return
	}
	if ds == nil {
		ds = []*models.Donation{}
	}
	jsonOK(w, http.StatusOK, ds)
}

// --- helpers ---

func validStatus(s models.DonationStatus) bool {
	for _, known := range models.Statuses {
		if s == known {
			return true
		}
	}
	return false
}

func writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, donation.ErrInvalidInput):
		jsonError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, donation.ErrNotFound):
		jsonError(w, "donation not found", http.StatusNotFound)
	case errors.Is(err, donation.ErrNotAvailable):
		jsonError(w, "donation is no longer available", http.StatusConflict)
	default:
		slog.Error(op+" failed", "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
	}
}

func jsonOK(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func jsonError(w http.ResponseWriter, msg string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
