package main

import (
	"os"

	"github.com/papyrusworks/papyrus/internal/cmd"
)

func main() {
	os.Exit(cmd.Main(os.Args))
}
