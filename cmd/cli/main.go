package main

import (
	"github.com/mchmarny/houseval/pkg/cli"
)

func main() {
	cli.Execute()
}
