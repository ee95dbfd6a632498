package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/cleared-dev/tally/internal/commands"
)

func main() {
	// A missing .env is normal; TALLY_* variables may come from the shell.
	_ = godotenv.Load()

	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
