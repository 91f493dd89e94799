package main

import "github.com/brave-tools/brave-updater/cmd/brave-updater/cmd"

func main() {
	cmd.Execute()
}
