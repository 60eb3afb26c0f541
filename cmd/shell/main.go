package main

import (
	"log"

	"ubae_shell/internal/transport/http"
)

func main() {
	if err := http.Run(); err != nil {
		log.Fatalf("Shell failed: %v", err)
	}
}
