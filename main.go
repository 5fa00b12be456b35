package main

import (
	"github.com/ncbi/vadr-sub007/cmd"
)

func main() {
	cmd.Execute() // initialize cobra commands
}
