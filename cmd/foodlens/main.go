package main

import (
	"github.com/MeKo-Tech/foodlens/cmd/foodlens/cmd"
)

func main() {
	cmd.Execute()
}
