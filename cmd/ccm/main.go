package main

import "github.com/ogulcanaydogan/cloud-cost-monitor/internal/cli"

func main() {
	cli.Execute()
}
