package app

import (
	"crypto/subtle"
	"net/http"

	"facility_equipment_ledger/config"

	"github.com/gin-gonic/gin"
)

const StaffTokenHeader = "X-Staff-Token"

// StaffOnly gates catalog mutations and backfill behind a shared
// token. Full account/session auth lives outside this service.
func StaffOnly(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.StaffToken == "" {
			// 未配置 token 时一律拒绝写操作
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, H{"error": "staff token not configured"})
			return
		}
		got := c.GetHeader(StaffTokenHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(cfg.StaffToken)) != 1 {
			c.AbortWithStatusJSON(http.StatusForbidden, H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}
