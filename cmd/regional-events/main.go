package main

import "github.com/pfrederiksen/regional-events/internal/cli"

func main() {
	cli.Execute()
}
