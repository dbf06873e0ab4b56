package main

import (
	"log"
	"os"

	"bossfight/internal/schemacli"
)

func main() {
	if err := schemacli.Execute(os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}
