package main

import (
	"os"

	"github.com/josephlewis42/tinysh/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
