package main

import "github.com/agentic-research/runekit/cmd"

func main() {
	cmd.Execute()
}
