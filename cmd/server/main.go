package main

import (
	"os"

	"github.com/jwtly10/kid-relay/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
