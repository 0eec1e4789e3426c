package main

import (
	"stocksage/internal/cli"
)

func main() {
	cli.Run()
}
