package main

import "replaycut/cmd"

func main() {
	cmd.Execute()
}
