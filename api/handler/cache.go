package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/imdbapi/cache"
	"github.com/use-agent/imdbapi/models"
)

// InvalidateTitle returns a handler for DELETE /imdb/cache/title/:imdbId.
// It drops every cached variant of the title.
func InvalidateTitle(cc *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("imdbId")
		if !validID(id) {
			badRequest(c, "imdbId must be \"tt\" followed by digits")
			return
		}
		c.JSON(http.StatusOK, models.InvalidateResponse{
			Removed: cc.Invalidate(cache.TitlePrefix(id)),
		})
	}
}
