package main

import "mccwk.com/arcard/cmd"

func main() {
	cmd.Execute()
}
