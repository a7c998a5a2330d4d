package main

import "github.com/mcoot/arcadebot/internal/cli"

func main() {
	cli.Execute()
}
