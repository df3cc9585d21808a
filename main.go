package main

import "clipscan/cmd"

func main() {
	cmd.Execute()
}
