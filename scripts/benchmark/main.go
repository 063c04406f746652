// Command benchmark measures imdbapi endpoint latency against a running
// server and writes a JSON report.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"
)

// CLI flags
var (
	apiURL = flag.String("api-url", "http://localhost:3000", "imdbapi base URL")
	apiKey = flag.String("api-key", "", "API key for authenticated requests")
	runs   = flag.Int("runs", 3, "Number of runs per case for averaging")
	output = flag.String("output", "benchmark-results.json", "JSON output file path")
)

// Cases covering each extraction path.
var cases = []struct {
	Label string
	Path  string
}{
	{"Movie", "/imdb/title/tt0111161"},
	{"Movie fr", "/imdb/title/tt0111161?language=fr"},
	{"Series", "/imdb/title/tt0903747"},
	{"Series+episodes", "/imdb/title/tt0386676?episodes=true"},
	{"Episode", "/imdb/title/tt0959621"},
	{"Search", "/imdb/search?title=inception"},
	{"Search filtered", "/imdb/search?title=the+office&type=tvSeries&year=2005"},
}

type errorResponse struct {
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// --- Benchmark result types ---

type runResult struct {
	Run        int    `json:"run"`
	LatencyMs  int64  `json:"latency_ms"`
	StatusCode int    `json:"status_code"`
	Cache      string `json:"cache,omitempty"`
	Items      int    `json:"items"`
	Bytes      int    `json:"bytes"`
	Success    bool   `json:"success"`
	Error      string `json:"error,omitempty"`
}

type caseAverages struct {
	LatencyMs float64 `json:"latency_ms"`
	P50Ms     int64   `json:"p50_ms"`
	Items     float64 `json:"items"`
}

type caseResult struct {
	Path     string        `json:"path"`
	Label    string        `json:"label"`
	Runs     []runResult   `json:"runs"`
	Averages *caseAverages `json:"averages,omitempty"`
}

type benchmarkReport struct {
	Timestamp   string       `json:"timestamp"`
	APIURL      string       `json:"api_url"`
	RunsPerCase int          `json:"runs_per_case"`
	Results     []caseResult `json:"results"`
}

func main() {
	flag.Parse()

	fmt.Println("=== imdbapi Benchmark Suite ===")
	fmt.Printf("API URL:   %s\n", *apiURL)
	fmt.Printf("Runs/case: %d\n", *runs)
	fmt.Printf("Output:    %s\n", *output)
	fmt.Println()

	// Quick connectivity check.
	if err := checkAPI(*apiURL); err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot reach API at %s: %v\n", *apiURL, err)
		fmt.Fprintf(os.Stderr, "Make sure imdbapi is running (imdbapi serve)\n")
		os.Exit(1)
	}

	report := benchmarkReport{
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		APIURL:      *apiURL,
		RunsPerCase: *runs,
	}

	// Season crawls are slow.
	client := &http.Client{Timeout: 5 * time.Minute}

	for _, c := range cases {
		fmt.Printf("Benchmarking [%s] %s ...\n", c.Label, c.Path)
		cr := caseResult{Path: c.Path, Label: c.Label}

		for i := 1; i <= *runs; i++ {
			fmt.Printf("  Run %d/%d ... ", i, *runs)
			rr := benchmarkPath(client, c.Path, i)
			if rr.Success {
				fmt.Printf("OK  %dms  %d items  cache=%s\n", rr.LatencyMs, rr.Items, orDash(rr.Cache))
			} else {
				fmt.Printf("FAILED: %s\n", rr.Error)
			}
			cr.Runs = append(cr.Runs, rr)
		}

		cr.Averages = computeAverages(cr.Runs)
		report.Results = append(report.Results, cr)
		fmt.Println()
	}

	printTable(report.Results)

	if err := writeJSON(*output, report); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing JSON output: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\nDetailed results written to %s\n", *output)
}

func checkAPI(baseURL string) error {
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

func benchmarkPath(client *http.Client, path string, run int) runResult {
	rr := runResult{Run: run}

	req, err := http.NewRequest(http.MethodGet, *apiURL+path, nil)
	if err != nil {
		rr.Error = fmt.Sprintf("request error: %v", err)
		return rr
	}
	if *apiKey != "" {
		req.Header.Set("X-API-Key", *apiKey)
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		rr.Error = fmt.Sprintf("request failed: %v", err)
		return rr
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	rr.LatencyMs = time.Since(start).Milliseconds()
	if err != nil {
		rr.Error = fmt.Sprintf("read error: %v", err)
		return rr
	}

	rr.StatusCode = resp.StatusCode
	rr.Cache = resp.Header.Get("X-Cache")
	rr.Bytes = len(body)

	if resp.StatusCode != http.StatusOK {
		var er errorResponse
		if json.Unmarshal(body, &er) == nil && er.Error != nil {
			rr.Error = fmt.Sprintf("[%s] %s", er.Error.Code, er.Error.Message)
		} else {
			rr.Error = fmt.Sprintf("HTTP %d", resp.StatusCode)
		}
		return rr
	}

	rr.Items = countItems(body)
	rr.Success = true
	return rr
}

// countItems is the number of search results, or 1 plus the episode count
// for a title.
func countItems(body []byte) int {
	var list []json.RawMessage
	if json.Unmarshal(body, &list) == nil {
		return len(list)
	}
	var title struct {
		Episodes []json.RawMessage `json:"episodes"`
	}
	if json.Unmarshal(body, &title) == nil {
		return 1 + len(title.Episodes)
	}
	return 0
}

func computeAverages(runs []runResult) *caseAverages {
	var avg caseAverages
	var latencies []int64

	for _, r := range runs {
		if !r.Success {
			continue
		}
		latencies = append(latencies, r.LatencyMs)
		avg.LatencyMs += float64(r.LatencyMs)
		avg.Items += float64(r.Items)
	}

	if len(latencies) == 0 {
		return nil
	}

	n := float64(len(latencies))
	avg.LatencyMs /= n
	avg.Items /= n

	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })
	avg.P50Ms = latencies[len(latencies)/2]
	return &avg
}

func printTable(results []caseResult) {
	fmt.Println(strings.Repeat("─", 85))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Case\tAvg Latency\tP50\tItems\tOK\n")
	fmt.Fprintf(w, "────\t───────────\t───\t─────\t──\n")

	for _, r := range results {
		ok := successCount(r.Runs)
		if r.Averages == nil {
			fmt.Fprintf(w, "%s\tFAILED\t-\t-\t0/%d\n", r.Label, len(r.Runs))
			continue
		}
		fmt.Fprintf(w, "%s\t%dms\t%dms\t%.0f\t%d/%d\n",
			r.Label,
			int64(r.Averages.LatencyMs),
			r.Averages.P50Ms,
			r.Averages.Items,
			ok, len(r.Runs),
		)
	}

	w.Flush()
	fmt.Println(strings.Repeat("─", 85))
}

func successCount(runs []runResult) int {
	n := 0
	for _, r := range runs {
		if r.Success {
			n++
		}
	}
	return n
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func writeJSON(path string, report benchmarkReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
