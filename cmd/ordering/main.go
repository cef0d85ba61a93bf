package main

import "github.com/the-dev-tools/ordering/internal/cli"

func main() {
	cli.Execute()
}
