package main

import "github.com/Rorical/AgentDesk/cmd"

func main() {
	cmd.Execute()
}
