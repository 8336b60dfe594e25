package main

import "recletter/cmd"

func main() {
	cmd.Execute()
}
