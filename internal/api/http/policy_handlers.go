package http

import (
	"net/http"

	"github.com/GriffinCanCode/navguard/internal/domain/mode"
	"github.com/GriffinCanCode/navguard/internal/shared/id"
	"github.com/GriffinCanCode/navguard/internal/shared/types"
	"github.com/GriffinCanCode/navguard/internal/shared/utils"
	"github.com/gin-gonic/gin"
)

// Evaluate decides one request issued into a partition
func (h *Handlers) Evaluate(c *gin.Context) {
	var req types.EvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := utils.ValidateURL(req.URL, "url"); err != nil {
		badRequest(c, err)
		return
	}
	if err := utils.ValidateID(req.TabID, "tab_id", false); err != nil {
		badRequest(c, err)
		return
	}

	done := h.span(c, "policy.evaluate")
	d, err := h.engine.OnBeforeRequest(req.Partition, req.URL, types.ParseResourceType(req.ResourceType), id.TabID(req.TabID))
	done()
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// Mode reports the current mode and the curated companion set
func (h *Handlers) Mode(c *gin.Context) {
	modes := h.engine.Modes()
	companions := modes.Companions()

	c.JSON(http.StatusOK, gin.H{
		"mode":   modes.CurrentMode(mode.DefaultScope),
		"scheme": modes.Scheme(),
		"home": gin.H{
			"open":    modes.HomeAddress(types.ModeOpen),
			"curated": modes.HomeAddress(types.ModeCurated),
		},
		"companions":  companions.Domains(),
		"asset_hosts": companions.Assets(),
	})
}

// Resolve resolves a private address
func (h *Handlers) Resolve(c *gin.Context) {
	address := c.Query("address")
	if err := utils.ValidateAddress(address); err != nil {
		badRequest(c, err)
		return
	}

	done := h.span(c, "resolver.resolve")
	res := h.engine.Resolve(address)
	done()

	status := http.StatusOK
	if !res.Success {
		status = http.StatusNotFound
	}
	c.JSON(status, res)
}

// ReloadLocations reloads the private location registry
func (h *Handlers) ReloadLocations(c *gin.Context) {
	done := h.span(c, "resolver.reload")
	result, err := h.engine.ReloadLocations(c.Request.Context())
	done()
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
