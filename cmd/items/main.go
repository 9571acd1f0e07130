package main

import (
	"os"

	"github.com/Makepad-fr/items/internal/cli"
)

func main() {
	os.Exit(cli.Execute(cli.NewItemsCommand()))
}
