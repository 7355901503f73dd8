package main

import "codegraph/internal/cli"

func main() {
	cli.Execute()
}
