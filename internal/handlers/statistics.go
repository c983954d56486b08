package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"studentdash-be/config"
	"studentdash-be/internal/models"
	"studentdash-be/internal/repository"
	"studentdash-be/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/sahilm/fuzzy"
)

type StatisticsHandler struct {
	cfg      *config.Config
	userRepo *repository.UserRepository
	gmail    *services.GmailService
	stats    *services.StatsService
}

func NewStatisticsHandler(cfg *config.Config, userRepo *repository.UserRepository, gmail *services.GmailService, stats *services.StatsService) *StatisticsHandler {
	return &StatisticsHandler{
		cfg:      cfg,
		userRepo: userRepo,
		gmail:    gmail,
		stats:    stats,
	}
}

// GetStatistics godoc
// @Summary Get communication statistics for the dashboard
// @Description Aggregates student-related email counts over the requested window with a 7-day daily breakdown and period-over-period trend
// @Tags statistics
// @Security ApiKeyAuth
// @Param period query string false "Time period: 7d, 30d, 90d" default(30d)
// @Param type query string false "Type filter: sent, received, all" default(all)
// @Param keywords query string false "Comma-separated keyword override"
// @Success 200 {object} models.StatsResult
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /statistics [get]
func (h *StatisticsHandler) GetStatistics(c *gin.Context) {
	provider, ok := h.providerForCaller(c)
	if !ok {
		return
	}

	// Parse period parameter
	period := c.DefaultQuery("period", "30d")
	var days int
	switch period {
	case "7d":
		days = 7
	case "90d":
		days = 90
	default:
		days = 30
	}

	filter := services.TypeFilter(c.DefaultQuery("type", "all"))
	switch filter {
	case services.FilterAll, services.FilterSent, services.FilterReceived:
	default:
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: "type must be sent, received or all",
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.StatsRequestTimeout)
	defer cancel()

	result, err := h.stats.GetStats(ctx, provider, services.StatsOptions{
		WindowDays: days,
		Keywords:   splitKeywords(c.Query("keywords")),
		TypeFilter: filter,
	})
	if err != nil {
		h.writeStatsError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetRecentThreads godoc
// @Summary List recent student-related conversation threads
// @Tags statistics
// @Security ApiKeyAuth
// @Param limit query int false "Maximum threads to return" default(5)
// @Param keywords query string false "Comma-separated keyword override"
// @Success 200 {array} models.ThreadSummary
// @Failure 401 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /statistics/threads [get]
func (h *StatisticsHandler) GetRecentThreads(c *gin.Context) {
	provider, ok := h.providerForCaller(c)
	if !ok {
		return
	}

	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "0"), 10, 64)
	if limit <= 0 {
		limit = h.cfg.ThreadDefaultLimit
	}
	if limit > 25 {
		limit = 25
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.StatsRequestTimeout)
	defer cancel()

	threads, err := h.stats.RecentThreads(ctx, provider, services.ThreadOptions{
		Keywords:   splitKeywords(c.Query("keywords")),
		MaxResults: limit,
	})
	if err != nil {
		h.writeStatsError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"threads": threads})
}

// SuggestKeywords godoc
// @Summary Fuzzy keyword suggestions for the statistics filter input
// @Tags statistics
// @Security ApiKeyAuth
// @Param q query string true "Partial keyword"
// @Success 200 {object} map[string][]string
// @Router /statistics/keywords/suggest [get]
func (h *StatisticsHandler) SuggestKeywords(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		c.JSON(http.StatusOK, gin.H{"suggestions": services.DefaultKeywords})
		return
	}

	vocabulary := append([]string{}, services.DefaultKeywords...)
	vocabulary = append(vocabulary, h.cfg.StudentDomains...)

	matches := fuzzy.Find(q, vocabulary)
	suggestions := make([]string, 0, len(matches))
	for _, m := range matches {
		suggestions = append(suggestions, m.Str)
		if len(suggestions) == 10 {
			break
		}
	}

	c.JSON(http.StatusOK, gin.H{"suggestions": suggestions})
}

// providerForCaller resolves the authenticated user and builds a Gmail
// provider from their stored tokens.
func (h *StatisticsHandler) providerForCaller(c *gin.Context) (services.MailProvider, bool) {
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{
			Error:   "unauthorized",
			Message: "User not authenticated",
		})
		return nil, false
	}

	ctx := c.Request.Context()
	user, err := h.userRepo.FindByID(ctx, userID.(string))
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "user_not_found",
			Message: "User not found",
		})
		return nil, false
	}

	provider, err := h.gmail.ProviderFor(ctx, user)
	if err != nil {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{
			Error:   "google_not_connected",
			Message: "No usable Google connection for this account",
		})
		return nil, false
	}
	return provider, true
}

// writeStatsError maps the engine's error taxonomy onto HTTP statuses.
// Kind only; raw provider text stays in the server log.
func (h *StatisticsHandler) writeStatsError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrAuthenticationExpired):
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{
			Error:   "authentication_expired",
			Message: "Google authentication expired, please reconnect",
		})
	case errors.Is(err, services.ErrPermissionScope):
		c.JSON(http.StatusForbidden, models.ErrorResponse{
			Error:   "permission_scope",
			Message: "Google token lacks the required scope, please re-consent",
		})
	default:
		c.JSON(http.StatusBadGateway, models.ErrorResponse{
			Error:   "provider_unavailable",
			Message: "Statistics are temporarily unavailable",
		})
	}
}

func splitKeywords(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
