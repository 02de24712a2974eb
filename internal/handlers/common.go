package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// parseIntQuery reads an integer query parameter with a fallback
func parseIntQuery(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val < 0 {
		return fallback
	}
	return val
}
