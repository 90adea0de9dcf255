package main

import (
	"github.com/pixelslots/crypto-backend/internal/server"
)

func main() {
	server.Init()
}
