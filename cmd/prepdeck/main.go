package main

import (
	"github.com/joho/godotenv"

	"github.com/prepdeck-dev/prepdeck/internal/cli"
)

func main() {
	// Optional .env for API and Deepgram keys; absence is fine.
	_ = godotenv.Load()

	cli.Execute()
}
