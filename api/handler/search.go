package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/imdbapi/cache"
	"github.com/use-agent/imdbapi/models"
	"github.com/use-agent/imdbapi/scraper"
)

// Search returns a handler for GET /imdb/search.
//
// Search never fails once the input is valid: navigation problems yield an
// empty list. Empty lists are not cached so a transient failure is not
// remembered.
func Search(sc IMDb, cc *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.SearchRequest
		if err := c.ShouldBindQuery(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		req.Defaults()

		q := scraper.SearchQuery{
			Query:  req.Title,
			Locale: scraper.NormalizeLocale(req.Language),
			Year:   req.Year,
		}
		if req.Type != "" {
			ct, ok := models.ContentTypeFromQuery(req.Type)
			if !ok {
				badRequest(c, "type must be one of movie, tvSeries, tvEpisode")
				return
			}
			q.Type = ct
		}

		key := cache.SearchKey(q.Query, q.Locale, string(q.Type), q.Year)
		if v, hit := cc.Get(key); hit {
			if results, ok := v.([]models.SearchResult); ok {
				c.Header("X-Cache", "hit")
				c.JSON(http.StatusOK, results)
				return
			}
		}

		results := sc.Search(c.Request.Context(), q)
		if cc != nil && len(results) > 0 {
			cc.Set(key, results)
			c.Header("X-Cache", "miss")
		}
		c.JSON(http.StatusOK, results)
	}
}
