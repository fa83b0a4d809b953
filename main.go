package main

import "termsheet/internal/cli"

func main() {
	cli.Execute()
}
