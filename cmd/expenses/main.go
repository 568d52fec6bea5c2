package main

import (
	"os"

	"expenses/internal/cli"
)

func main() {
	os.Exit(cli.Execute(cli.NewRootCommand()))
}
