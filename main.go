package main

import (
	"makidex-cli/cmd"
)

func main() {
	cmd.Execute()
}
