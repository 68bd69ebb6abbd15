package http

import (
	"net/http"

	"github.com/GriffinCanCode/navguard/internal/shared/id"
	"github.com/GriffinCanCode/navguard/internal/shared/types"
	"github.com/GriffinCanCode/navguard/internal/shared/utils"
	"github.com/gin-gonic/gin"
)

// tabID validates the :id path parameter
func tabID(c *gin.Context) (id.TabID, bool) {
	raw := c.Param("id")
	if err := utils.ValidateID(raw, "tab_id", true); err != nil {
		badRequest(c, err)
		return "", false
	}
	return id.TabID(raw), true
}

// CreateTab opens a tab in the requested mode
func (h *Handlers) CreateTab(c *gin.Context) {
	var req types.CreateTabRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	m, err := types.ParseMode(req.Mode)
	if err != nil {
		badRequest(c, err)
		return
	}

	tab, err := h.engine.Sessions().CreateTab(m)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, tab)
}

// ListTabs lists all tabs and the active one
func (h *Handlers) ListTabs(c *gin.Context) {
	resp := gin.H{"tabs": h.engine.Sessions().Tabs()}
	if active, ok := h.engine.Sessions().ActiveTab(); ok {
		resp["active"] = active.ID
	}
	c.JSON(http.StatusOK, resp)
}

// CloseTab closes a tab
func (h *Handlers) CloseTab(c *gin.Context) {
	tid, ok := tabID(c)
	if !ok {
		return
	}
	closed := h.engine.Sessions().CloseTab(tid)
	status := http.StatusOK
	if !closed {
		status = http.StatusNotFound
	}
	c.JSON(status, gin.H{
		"success": closed,
		"tab_id":  tid,
	})
}

// Navigate expands address-bar input for the tab's mode and decides it
func (h *Handlers) Navigate(c *gin.Context) {
	tid, ok := tabID(c)
	if !ok {
		return
	}
	var req types.NavigateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := utils.ValidateURL(req.Input, "input"); err != nil {
		badRequest(c, err)
		return
	}

	done := h.span(c, "policy.navigate")
	result, err := h.engine.Navigate(tid, req.Input)
	done()
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Commit records the URL the rendering engine committed for a tab
func (h *Handlers) Commit(c *gin.Context) {
	tid, ok := tabID(c)
	if !ok {
		return
	}
	var req types.CommitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := utils.ValidateURL(req.URL, "url"); err != nil {
		badRequest(c, err)
		return
	}

	tab, err := h.engine.OnNavigationCommitted(tid, req.URL)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, tab)
}

// Display returns what the address bar should show for a tab
func (h *Handlers) Display(c *gin.Context) {
	tid, ok := tabID(c)
	if !ok {
		return
	}
	display, err := h.engine.DisplayURL(tid)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"tab_id":      tid,
		"display_url": display,
	})
}

// ToggleMode moves the user from a tab to a tab of the requested mode
func (h *Handlers) ToggleMode(c *gin.Context) {
	tid, ok := tabID(c)
	if !ok {
		return
	}
	var req types.ModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	m, err := types.ParseMode(req.Mode)
	if err != nil {
		badRequest(c, err)
		return
	}

	tab, err := h.engine.OnModeToggleRequested(tid, m)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"tab":      tab,
		"previous": tid,
	})
}
