// The main package for the reviewscraper executable.
package main

import (
	"github.com/arnadev/SaaS-review-Scraper/cmd"
)

// main is the entry point of the application.
// It defers all execution to the Cobra CLI library.
func main() {
	cmd.Execute()
}
