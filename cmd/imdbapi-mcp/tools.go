package main

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/use-agent/imdbapi/models"
)

func handleGetTitle(c *apiClient) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("imdb_id")
		if err != nil {
			return mcp.NewToolResultError("imdb_id is required"), nil
		}

		query := url.Values{}
		if lang := request.GetString("language", ""); lang != "" {
			query.Set("language", lang)
		}
		if request.GetBool("episodes", false) {
			query.Set("episodes", "true")
		}

		var title models.Title
		if err := c.get(ctx, "/imdb/title/"+url.PathEscape(id), query, &title); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("get_title failed: %v", err)), nil
		}
		return mcp.NewToolResultText(formatTitle(&title)), nil
	}
}

func handleSearchTitles(c *apiClient) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		q, err := request.RequireString("title")
		if err != nil {
			return mcp.NewToolResultError("title is required"), nil
		}

		query := url.Values{"title": {q}}
		if lang := request.GetString("language", ""); lang != "" {
			query.Set("language", lang)
		}
		if ct := request.GetString("type", ""); ct != "" {
			query.Set("type", ct)
		}
		if year := request.GetInt("year", 0); year > 0 {
			query.Set("year", strconv.Itoa(year))
		}

		var results []models.SearchResult
		if err := c.get(ctx, "/imdb/search", query, &results); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("search_titles failed: %v", err)), nil
		}
		return mcp.NewToolResultText(formatResults(q, results)), nil
	}
}

func formatTitle(t *models.Title) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s (%d) [%s] %s\n", t.Title, t.Year, t.Type, t.ID)
	if t.OriginalTitle != "" && t.OriginalTitle != t.Title {
		fmt.Fprintf(&sb, "Original title: %s\n", t.OriginalTitle)
	}
	if t.Rating != nil {
		fmt.Fprintf(&sb, "Rating: %.1f/10\n", *t.Rating)
	}
	if len(t.Genres) > 0 {
		fmt.Fprintf(&sb, "Genres: %s\n", strings.Join(t.Genres, ", "))
	}
	if t.Runtime != nil {
		fmt.Fprintf(&sb, "Runtime: %d min\n", *t.Runtime/60)
	}
	if t.Seasons != nil {
		fmt.Fprintf(&sb, "Seasons: %d\n", *t.Seasons)
	}
	if len(t.Keywords) > 0 {
		fmt.Fprintf(&sb, "Keywords: %s\n", strings.Join(t.Keywords, ", "))
	}
	if t.Synopsis != "" {
		fmt.Fprintf(&sb, "\n%s\n", t.Synopsis)
	}

	for _, ep := range t.Episodes {
		fmt.Fprintf(&sb, "\nS%02dE%02d %s (%s)", ep.Season, ep.Number, ep.Title, ep.ID)
		if ep.Release != nil {
			fmt.Fprintf(&sb, " aired %s", ep.Release.Format("2006-01-02"))
		}
		if ep.Rating != nil {
			fmt.Fprintf(&sb, " rated %.1f", *ep.Rating)
		}
	}
	if len(t.Episodes) > 0 {
		sb.WriteString("\n")
	}
	return sb.String()
}

func formatResults(query string, results []models.SearchResult) string {
	if len(results) == 0 {
		return fmt.Sprintf("No titles found for %q", query)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d titles for %q:\n\n", len(results), query)
	for i, r := range results {
		fmt.Fprintf(&sb, "%2d. %s", i+1, r.Title)
		if r.Year != nil {
			fmt.Fprintf(&sb, " (%d)", *r.Year)
		}
		fmt.Fprintf(&sb, " [%s] %s", r.Type, r.ID)
		if r.Rating != nil {
			fmt.Fprintf(&sb, " rated %.1f", *r.Rating)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
