package main

import (
	"os"

	"github.com/orderdesk/orderdesk/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
