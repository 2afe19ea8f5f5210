package main

import (
	"log"

	"leadawaker/internal/api"
	"leadawaker/internal/config"
)

func main() {
	params, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	serverApi := api.NewApi(params)
	serverApi.Start()
}
