package main

import (
	"os"

	"github.com/blackwell-systems/stockrank/internal/app"
)

func main() {
	// Execute reports the error itself.
	if err := app.Execute(); err != nil {
		os.Exit(1)
	}
}
