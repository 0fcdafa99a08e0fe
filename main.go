package main

import (
	"os"

	"github.com/dealerdesk/dealerdesk/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
