// Command barsmith renders academic bar charts and manages saved chart
// projects.
//
// Usage:
//
//	barsmith render -i chart.json -o chart.svg
//	cat chart.yaml | barsmith render --yaml > chart.svg
//	barsmith export -i chart.json --format svg    # writes <title>.svg
//	barsmith watch -i chart.json -o chart.svg     # re-render on change
//	barsmith project list
//	barsmith batch -o out/                        # render every project
//	barsmith import csv data.csv > chart.json
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	os.Exit(run())
}

func run() int {
	err := New().Execute(context.Background())
	if err == nil {
		return 0
	}
	fmt.Fprintf(os.Stderr, "barsmith: %v\n", err)
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return 1
}

// exitError carries a process exit code other than 1.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }
