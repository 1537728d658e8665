package main

import (
	"os"

	"github.com/qri-io/h5diff/cmd/h5diff/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
