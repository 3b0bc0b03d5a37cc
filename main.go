package main

import "github.com/HaiFongPan/tfbv-cli/cmd"

func main() {
	cmd.Execute()
}
