package main

import "capacitaciones/cli"

func main() {
	cli.Execute()
}
