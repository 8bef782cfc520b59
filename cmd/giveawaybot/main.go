package main

import (
	"log"

	"github.com/m3rciful/giveawaybot/core/cmd"
	"github.com/m3rciful/giveawaybot/internal/app"
)

func main() {
	if err := cmd.Run(app.RunOptions()); err != nil {
		log.Fatal(err)
	}
}
