package main

import "msgagent/cmd"

func main() {
	cmd.Execute()
}
