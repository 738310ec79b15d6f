package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

func main() {
	// load .env file if present so os.Getenv picks values from it
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
