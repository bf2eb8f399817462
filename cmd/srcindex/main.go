package main

import "github.com/cbout22/srcindex/internal/cli"

func main() {
	cli.Execute()
}
