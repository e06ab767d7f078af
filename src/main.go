package main

import (
	_ "embed"

	"github.com/VectorBits/clearsign/src/cmd"
)

//go:embed config/settings.example.yaml
var settingsExample []byte

func main() {
	cmd.PrintFatal(cmd.Run(settingsExample))
}
