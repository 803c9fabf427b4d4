package main

import (
	"os"

	"github.com/codeanytime/blogctl/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
