package main

import (
	"mediabatch/internal/cmd"
)

func main() {
	cmd.Execute()
}
