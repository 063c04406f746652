package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/imdbapi/cache"
	"github.com/use-agent/imdbapi/models"
	"github.com/use-agent/imdbapi/scraper"
)

// Title returns a handler for GET /imdb/title/:imdbId.
func Title(sc IMDb, cc *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.TitleRequest
		if err := c.ShouldBindUri(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		if err := c.ShouldBindQuery(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		req.Defaults()

		if !validID(req.ID) {
			badRequest(c, "imdbId must be \"tt\" followed by digits")
			return
		}

		locale := scraper.NormalizeLocale(req.Language)
		key := cache.TitleKey(req.ID, locale, req.Episodes)
		if v, hit := cc.Get(key); hit {
			if title, ok := v.(*models.Title); ok {
				c.Header("X-Cache", "hit")
				c.JSON(http.StatusOK, title)
				return
			}
		}

		title, err := sc.FindTitle(c.Request.Context(), req.ID, locale, req.Episodes)
		if err != nil {
			respondError(c, req.ID, err)
			return
		}

		if cc != nil {
			cc.Set(key, title)
			c.Header("X-Cache", "miss")
		}
		c.JSON(http.StatusOK, title)
	}
}
