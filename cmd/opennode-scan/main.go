package main

import "github.com/llamasearchai/opennode-scan/internal/cli"

func main() {
	cli.Execute()
}
