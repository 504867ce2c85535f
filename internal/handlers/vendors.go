package handlers

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"onboarding-reminders/internal/models"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

// VendorRow is one line in the admin vendor table.
type VendorRow struct {
	ID                 uint                    `json:"id"`
	Username           string                  `json:"username"`
	DisplayName        string                  `json:"display_name"`
	Email              string                  `json:"email"`
	Status             models.OnboardingStatus `json:"status"`
	StatusLabel        string                  `json:"status_label"`
	LastReminder       string                  `json:"last_reminder"`
	LastReminderStatus string                  `json:"last_reminder_status,omitempty"`
}

// ListVendors renders the admin vendor table: reminder-eligible accounts
// with status filter, search, sorting and pagination.
func (h *Handler) ListVendors(c *gin.Context) {
	ctx := c.Request.Context()

	var statusFilter models.OnboardingStatus
	if raw := c.Query("status"); raw != "" {
		parsed, err := models.ParseReminderStatus(raw)
		if err != nil {
			h.handleError(c, http.StatusBadRequest, "Invalid status filter", err)
			return
		}
		statusFilter = parsed
	}

	accounts, err := h.vendors.ListByRoles(ctx, h.vendorRoles)
	if err != nil {
		h.handleError(c, http.StatusInternalServerError, "Failed to list vendors", err)
		return
	}

	search := strings.ToLower(strings.TrimSpace(c.Query("s")))

	rows := make([]VendorRow, 0, len(accounts))
	for i := range accounts {
		acct := &accounts[i]
		status := h.classifier.Classify(ctx, acct)
		if !status.ReminderEligible() {
			continue
		}
		if statusFilter != "" && status != statusFilter {
			continue
		}
		if search != "" && !matchesSearch(acct, search) {
			continue
		}

		row := VendorRow{
			ID:                 acct.ID,
			Username:           acct.Username,
			DisplayName:        acct.RecipientName(),
			Email:              acct.Email,
			Status:             status,
			StatusLabel:        status.DisplayName(),
			LastReminder:       "Never",
			LastReminderStatus: acct.LastReminderStatus,
		}
		if acct.LastReminderSentAt != nil {
			row.LastReminder = acct.LastReminderSentAt.Format("2006-01-02 15:04")
		}
		rows = append(rows, row)
	}

	sortRows(rows, c.DefaultQuery("orderby", "username"), c.DefaultQuery("order", "asc"))

	page, perPage := pagination(c)
	total := len(rows)
	totalPages := (total + perPage - 1) / perPage
	start := (page - 1) * perPage
	if start > total {
		start = total
	}
	end := start + perPage
	if end > total {
		end = total
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"vendors": rows[start:end],
			"pagination": gin.H{
				"page":        page,
				"per_page":    perPage,
				"total":       total,
				"total_pages": totalPages,
			},
		},
	})
}

// BulkSend sends reminders to an explicit set of account IDs. Accounts
// whose status needs no reminder are counted as skipped, not errors.
func (h *Handler) BulkSend(c *gin.Context) {
	var req struct {
		IDs []uint `json:"ids" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleError(c, http.StatusBadRequest, "No account IDs provided", err)
		return
	}

	ctx := c.Request.Context()
	sent := 0
	for _, id := range req.IDs {
		if err := h.dispatcher.SendSingle(ctx, id); err != nil {
			h.log.Warn("bulk send skipped account", zap.Uint("account_id", id), zap.Error(err))
			continue
		}
		sent++
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("Sent %d of %d reminders", sent, len(req.IDs)),
		"data":    gin.H{"sent": sent, "requested": len(req.IDs)},
	})
}

func matchesSearch(acct *models.VendorAccount, search string) bool {
	return strings.Contains(strings.ToLower(acct.Username), search) ||
		strings.Contains(strings.ToLower(acct.DisplayName), search) ||
		strings.Contains(strings.ToLower(acct.Email), search)
}

func sortRows(rows []VendorRow, orderBy, order string) {
	desc := strings.EqualFold(order, "desc")
	sort.SliceStable(rows, func(i, j int) bool {
		var less bool
		switch orderBy {
		case "display_name":
			less = rows[i].DisplayName < rows[j].DisplayName
		case "email":
			less = rows[i].Email < rows[j].Email
		case "status":
			less = rows[i].Status < rows[j].Status
		case "last_reminder":
			less = rows[i].LastReminder < rows[j].LastReminder
		default:
			less = rows[i].Username < rows[j].Username
		}
		if desc {
			return !less
		}
		return less
	})
}

func pagination(c *gin.Context) (int, int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	perPage, err := strconv.Atoi(c.DefaultQuery("per_page", strconv.Itoa(defaultPerPage)))
	if err != nil || perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return page, perPage
}
