package main

import "dataroom-cli/cmd"

func main() {
	cmd.Execute()
}
