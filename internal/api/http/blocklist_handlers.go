package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// maxEventLimit caps the events returned in one response
const maxEventLimit = 1000

// RuleSet describes the live rule set
func (h *Handlers) RuleSet(c *gin.Context) {
	c.JSON(http.StatusOK, h.engine.Blocklist().Meta())
}

// BlockEvents lists recent block events, oldest first
func (h *Handlers) BlockEvents(c *gin.Context) {
	limit := 100
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		limit = min(n, maxEventLimit)
	}

	log := h.engine.Blocklist().EventLog()
	c.JSON(http.StatusOK, gin.H{
		"events": log.Events(limit),
		"total":  log.Total(),
	})
}

// ReloadRules re-reads the rule files
func (h *Handlers) ReloadRules(c *gin.Context) {
	done := h.span(c, "blocklist.reload")
	result, err := h.engine.ReloadRules()
	done()
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
