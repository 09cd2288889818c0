package main

import (
	"github.com/mchmarny/tradepulse/pkg/cli"
)

func main() {
	cli.Execute()
}
