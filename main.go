// empleomatch extracts CV profiles and matches them against job offers.
//
// Extracts structured profiles from raw CV text, scrapes a job board
// politely, enriches offers in the background, and ranks them against the
// profile.
package main

import (
	"os"

	"github.com/empleomatch/empleomatch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
