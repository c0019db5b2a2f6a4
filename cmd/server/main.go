package main

import (
	"github.com/joho/godotenv"

	"github.com/digital-event-scheduler/server/cmd/server/cmd"
)

func main() {
	// Missing .env is fine; production configures via real env vars.
	_ = godotenv.Load()

	cmd.Execute()
}
