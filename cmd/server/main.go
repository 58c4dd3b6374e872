package main

import "sites/internal/cli"

func main() {
	cli.Execute()
}
