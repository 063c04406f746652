// Command imdbapi serves IMDb title and search data extracted with a
// headless browser, and runs one-shot lookups from the shell.
package main

func main() {
	Execute()
}
