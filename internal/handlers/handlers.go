package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"onboarding-reminders/internal/auth"
	"onboarding-reminders/internal/models"
)

// SettingsAPI is the settings access the admin surface needs.
type SettingsAPI interface {
	ReminderSettings(ctx context.Context) (models.ReminderSettings, error)
	SaveReminderSettings(ctx context.Context, settings models.ReminderSettings) error
}

// VendorDirectory lists vendor accounts for the admin table.
type VendorDirectory interface {
	ListByRoles(ctx context.Context, roles []string) ([]models.VendorAccount, error)
	CountByRoles(ctx context.Context, roles []string) (int64, error)
}

// Classifier computes statuses for the vendor table and debug output.
type Classifier interface {
	Classify(ctx context.Context, acct *models.VendorAccount) models.OnboardingStatus
	ProviderName() string
}

// Dispatcher is the manual dispatch surface exposed to admins.
type Dispatcher interface {
	SendNow(ctx context.Context, statuses []models.OnboardingStatus, bypassRateLimit bool) (int, int, error)
	SendSingle(ctx context.Context, id uint) error
	SendDebug(ctx context.Context, status models.OnboardingStatus, email string) error
}

// Handler carries the dependencies of all HTTP handlers.
type Handler struct {
	settings    SettingsAPI
	vendors     VendorDirectory
	classifier  Classifier
	dispatcher  Dispatcher
	nonces      *auth.NonceStore
	vendorRoles []string
	siteName    string
	log         *zap.Logger
}

// New wires the handler set.
func New(settings SettingsAPI, vendors VendorDirectory, classifier Classifier, dispatcher Dispatcher, nonces *auth.NonceStore, vendorRoles []string, siteName string, log *zap.Logger) *Handler {
	return &Handler{
		settings:    settings,
		vendors:     vendors,
		classifier:  classifier,
		dispatcher:  dispatcher,
		nonces:      nonces,
		vendorRoles: vendorRoles,
		siteName:    siteName,
		log:         log,
	}
}

// RegisterRoutes mounts all routes on the router. The admin group is token
// guarded; the dispatch actions additionally require a single-use nonce.
func (h *Handler) RegisterRoutes(router *gin.Engine, adminToken string) {
	router.GET("/", h.Home)
	router.GET("/health", h.Health)

	admin := router.Group("/admin")
	admin.Use(auth.AdminAuth(adminToken))
	{
		admin.GET("/nonce", h.IssueNonce)
		admin.GET("/settings", h.GetSettings)
		admin.PUT("/settings", h.UpdateSettings)
		admin.GET("/vendors", h.ListVendors)
		admin.GET("/debug-info", h.DebugInfo)

		dispatch := admin.Group("")
		dispatch.Use(auth.RequireNonce(h.nonces, h.log))
		{
			dispatch.POST("/vendors/bulk-send", h.BulkSend)
			dispatch.POST("/reminders/test-send", h.TestSend)
			dispatch.POST("/reminders/send/:id", h.SendSingleReminder)
			dispatch.POST("/reminders/debug-send", h.DebugSend)
		}
	}
}

// handleError provides a consistent way to handle and log errors
func (h *Handler) handleError(c *gin.Context, status int, message string, err error) {
	h.log.Error("request failed",
		zap.String("path", c.FullPath()),
		zap.String("message", message),
		zap.Error(err))
	c.JSON(status, gin.H{"success": false, "message": message})
}

// Home handles requests to the root path "/"
func (h *Handler) Home(c *gin.Context) {
	c.String(http.StatusOK, "%s onboarding reminder service", h.siteName)
}

// Health is a simple health check endpoint
func (h *Handler) Health(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

// IssueNonce hands out a single-use nonce for the dispatch actions.
func (h *Handler) IssueNonce(c *gin.Context) {
	nonce, err := h.nonces.Issue(c.Request.Context())
	if err != nil {
		h.handleError(c, http.StatusInternalServerError, "Failed to issue nonce", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"nonce": nonce}})
}

// DebugInfo reports provider and vendor base information for diagnosing
// misclassification without digging through logs.
func (h *Handler) DebugInfo(c *gin.Context) {
	ctx := c.Request.Context()

	count, err := h.vendors.CountByRoles(ctx, h.vendorRoles)
	if err != nil {
		h.handleError(c, http.StatusInternalServerError, "Failed to count vendors", err)
		return
	}

	accounts, err := h.vendors.ListByRoles(ctx, h.vendorRoles)
	if err != nil {
		h.handleError(c, http.StatusInternalServerError, "Failed to list vendors", err)
		return
	}

	samples := make([]gin.H, 0, 5)
	for i := range accounts {
		if len(samples) == 5 {
			break
		}
		status := h.classifier.Classify(ctx, &accounts[i])
		samples = append(samples, gin.H{
			"id":       accounts[i].ID,
			"username": accounts[i].Username,
			"status":   status,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"provider":     h.classifier.ProviderName(),
			"vendor_roles": h.vendorRoles,
			"vendor_count": count,
			"samples":      samples,
		},
	})
}
