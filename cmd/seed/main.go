// Command seed writes a synthetic customer churn CSV for local development
// and demos.
package main

import (
	"flag"
	"log"
	"os"

	"churnscope/internal/testkit"
)

func main() {
	var (
		out  = flag.String("out", "customer_churn_data.csv", "output CSV path")
		rows = flag.Int("rows", 10000, "number of rows to generate")
		seed = flag.Int64("seed", 42, "random seed")
	)
	flag.Parse()

	data := testkit.GenerateChurnCSV(*rows, *seed)
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		log.Fatalf("writing %s: %v", *out, err)
	}
	log.Printf("Wrote %d rows to %s", *rows, *out)
}
