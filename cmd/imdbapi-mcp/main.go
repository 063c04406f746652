// Command imdbapi-mcp exposes the imdbapi HTTP API as MCP tools over stdio.
package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func main() {
	apiURL := os.Getenv("IMDBAPI_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:3000"
	}
	apiKey := os.Getenv("IMDBAPI_API_KEY")
	if apiKey == "" {
		fmt.Fprintln(os.Stderr, "IMDBAPI_API_KEY is required")
		os.Exit(1)
	}

	// A full season crawl can take minutes.
	c := &apiClient{
		baseURL: apiURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 5 * time.Minute},
	}

	if err := server.ServeStdio(newServer(c)); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func newServer(c *apiClient) *server.MCPServer {
	s := server.NewMCPServer(
		"imdbapi",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	getTitleTool := mcp.NewTool("get_title",
		mcp.WithDescription("Fetch one IMDb title (movie, series or episode) by its IMDb id, with rating, genres, keywords, runtime and year. Series can include every episode of every season."),
		mcp.WithString("imdb_id",
			mcp.Required(),
			mcp.Description("IMDb identifier, e.g. tt0111161"),
		),
		mcp.WithString("language",
			mcp.Description("Locale for localized titles and dates (default 'en')"),
			mcp.Enum("en", "fr", "de", "es", "it", "pt"),
		),
		mcp.WithBoolean("episodes",
			mcp.Description("For series: crawl all seasons and include episodes (slow)"),
		),
	)
	s.AddTool(getTitleTool, handleGetTitle(c))

	searchTool := mcp.NewTool("search_titles",
		mcp.WithDescription("Search IMDb titles by name, optionally filtered by type and release year."),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Free-text title query"),
		),
		mcp.WithString("language",
			mcp.Description("Locale for localized titles (default 'en')"),
			mcp.Enum("en", "fr", "de", "es", "it", "pt"),
		),
		mcp.WithString("type",
			mcp.Description("Restrict results to one content type"),
			mcp.Enum("movie", "tvSeries", "tvEpisode"),
		),
		mcp.WithNumber("year",
			mcp.Description("Restrict results to one release year"),
		),
	)
	s.AddTool(searchTool, handleSearchTitles(c))

	return s
}
