package main

import "github.com/rustyeddy/trendchart/internal/cli"

func main() {
	cli.Execute()
}
