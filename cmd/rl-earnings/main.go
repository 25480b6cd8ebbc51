package main

import "github.com/lpearl21/rl-earnings/internal/cli"

var version = "dev"

func main() {
	cli.Version = version
	cli.Execute()
}
