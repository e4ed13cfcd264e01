package main

import (
	"github.td.teradata.com/sandbox/mcs8-sim/internal/cmd"
	"log"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
