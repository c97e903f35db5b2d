package controllers

import (
	"errors"
	"net/http"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/spf13/cast"

	"rently/internal/models"
	"rently/internal/providers"
	"rently/internal/services"
	"rently/internal/store"
)

const maxRequestBodySize = 1 << 20 // 1 MB

type ApiController struct {
	logger        providers.Logger
	listings      services.ListingServiceInterface
	analytics     services.AnalyticsServiceInterface
	auth          *services.AuthService
	notifications services.NotificationServiceInterface
	chats         services.ChatServiceInterface
	cache         providers.CacheProviderInterface
}

func NewApiController(logger providers.Logger, listings services.ListingServiceInterface, analytics services.AnalyticsServiceInterface, auth *services.AuthService, notifications services.NotificationServiceInterface, chats services.ChatServiceInterface, cache providers.CacheProviderInterface) *ApiController {
	return &ApiController{
		logger:        logger,
		listings:      listings,
		analytics:     analytics,
		auth:          auth,
		notifications: notifications,
		chats:         chats,
		cache:         cache,
	}
}

// authErrorMessages maps auth failures to fixed user-facing strings.
var authErrorMessages = map[error]string{
	services.ErrLockedOut:           "Too many failed attempts. Try again later.",
	providers.ErrInvalidCredentials: "Incorrect email or password.",
}

const authErrorFallback = "An unexpected error occurred. Please try again."

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	gson, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(gson)
}

func (ac *ApiController) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		http.Error(w, "Not Found", http.StatusNotFound)
	case errors.Is(err, services.ErrInvalidTransition):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		ac.logger.Errorf(providers.TypeApp, "Request failed: %s", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func (ac *ApiController) serveFromCacheOrCompute(w http.ResponseWriter, cacheKey string, compute func() (any, error)) {
	if data, ok := ac.cache.Get(cacheKey); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}

	result, err := compute()
	if err != nil {
		ac.writeServiceError(w, err)
		return
	}

	gson, err := json.Marshal(result)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ac.cache.Set(cacheKey, gson)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

// --- listings ---

func (ac *ApiController) CreateListing(w http.ResponseWriter, r *http.Request) {
	var input services.CreateListingInput
	if !decodeBody(w, r, &input) {
		return
	}
	listing, err := ac.listings.Create(r.Context(), input)
	if err != nil {
		ac.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, listing)
}

func (ac *ApiController) GetListing(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	listing, err := ac.listings.Get(r.Context(), id)
	if err != nil {
		ac.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

func (ac *ApiController) UpdateListing(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		ID string `json:"id"`
		services.UpdateListingInput
	}
	if !decodeBody(w, r, &payload) {
		return
	}
	listing, err := ac.listings.Update(r.Context(), payload.ID, payload.UpdateListingInput)
	if err != nil {
		ac.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

func (ac *ApiController) ChangeListingStatus(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		ID     string               `json:"id"`
		Status models.ListingStatus `json:"status"`
	}
	if !decodeBody(w, r, &payload) {
		return
	}
	listing, err := ac.listings.ChangeStatus(r.Context(), payload.ID, payload.Status)
	if err != nil {
		ac.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

func (ac *ApiController) FlagListing(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		ID         string `json:"id"`
		ReporterID string `json:"reporter_id"`
		Reason     string `json:"reason"`
	}
	if !decodeBody(w, r, &payload) {
		return
	}
	listing, err := ac.listings.Flag(r.Context(), payload.ID, payload.ReporterID, payload.Reason)
	if err != nil {
		ac.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

func (ac *ApiController) RecordView(w http.ResponseWriter, r *http.Request) {
	ac.recordMetric(w, r, func(id string) error {
		return ac.listings.RecordView(r.Context(), id)
	})
}

func (ac *ApiController) Bookmark(w http.ResponseWriter, r *http.Request) {
	ac.recordMetric(w, r, func(id string) error {
		return ac.listings.Bookmark(r.Context(), id)
	})
}

func (ac *ApiController) Unbookmark(w http.ResponseWriter, r *http.Request) {
	ac.recordMetric(w, r, func(id string) error {
		return ac.listings.Unbookmark(r.Context(), id)
	})
}

func (ac *ApiController) recordMetric(w http.ResponseWriter, r *http.Request, record func(id string) error) {
	var payload struct {
		ID string `json:"id"`
	}
	if !decodeBody(w, r, &payload) {
		return
	}
	if err := record(payload.ID); err != nil {
		ac.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- analytics ---

func (ac *ApiController) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("listing")
	if id == "" {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	a, err := ac.analytics.GetListingAnalytics(r.Context(), id)
	if err != nil {
		ac.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (ac *ApiController) GetLast24h(w http.ResponseWriter, r *http.Request) {
	ids := splitIDs(r.URL.Query().Get("ids"))
	if len(ids) == 0 {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	ac.serveFromCacheOrCompute(w, "last24h:"+strings.Join(ids, ","), func() (any, error) {
		return ac.analytics.Last24hMetrics(r.Context(), ids)
	})
}

func (ac *ApiController) GetRollingWindow(w http.ResponseWriter, r *http.Request) {
	ids := splitIDs(r.URL.Query().Get("ids"))
	if len(ids) == 0 {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	days := cast.ToInt(r.URL.Query().Get("days"))
	ac.serveFromCacheOrCompute(w, "window:"+cast.ToString(days)+":"+strings.Join(ids, ","), func() (any, error) {
		return ac.analytics.RollingWindowMetrics(r.Context(), ids, days)
	})
}

func splitIDs(raw string) []string {
	var ids []string
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// --- auth ---

func (ac *ApiController) Login(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &payload) {
		return
	}

	token, err := ac.auth.Login(r.Context(), payload.Email, payload.Password)
	if err != nil {
		message, status := authErrorFallback, http.StatusInternalServerError
		for known, msg := range authErrorMessages {
			if errors.Is(err, known) {
				message, status = msg, http.StatusUnauthorized
				break
			}
		}
		if errors.Is(err, services.ErrLockedOut) {
			status = http.StatusTooManyRequests
		}
		ac.logger.Warnf(providers.TypeApp, "Login failed for %s: %s", payload.Email, err)
		writeJSON(w, status, map[string]string{"error": message})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (ac *ApiController) CheckSession(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	email, err := ac.auth.CheckSession(token)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Session expired. Please sign in again."})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"email": email})
}

// --- admin notifications ---

func (ac *ApiController) ListNotifications(w http.ResponseWriter, r *http.Request) {
	limit := cast.ToInt(r.URL.Query().Get("limit"))
	notifications, err := ac.notifications.List(r.Context(), limit)
	if err != nil {
		ac.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, notifications)
}

func (ac *ApiController) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		ID string `json:"id"`
	}
	if !decodeBody(w, r, &payload) {
		return
	}
	if err := ac.notifications.MarkRead(r.Context(), payload.ID); err != nil {
		ac.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- chat ---

func (ac *ApiController) GetMessages(w http.ResponseWriter, r *http.Request) {
	chatID := r.URL.Query().Get("chat")
	if chatID == "" {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	page := cast.ToInt(r.URL.Query().Get("page"))
	msgs, err := ac.chats.Messages(r.Context(), chatID, page)
	if err != nil {
		ac.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

func (ac *ApiController) MarkMessageRead(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		ChatID    string `json:"chat_id"`
		MessageID string `json:"message_id"`
	}
	if !decodeBody(w, r, &payload) {
		return
	}
	if err := ac.chats.MarkRead(r.Context(), payload.ChatID, payload.MessageID); err != nil {
		ac.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
