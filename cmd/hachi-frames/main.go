package main

import (
	"os"

	"github.com/hachi-lang/hachi/pkg/cli"
)

func main() {
	os.Exit(cli.Run())
}
