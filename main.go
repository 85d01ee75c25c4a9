package main

import (
	"github.com/anne-gcd/MTG10X/cmd"
)

func main() {
	cmd.Execute() // initialize cobra commands
}
