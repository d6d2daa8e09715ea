package main

import (
	"github.com/byxorna/stickies/cmd"
)

func main() {
	cmd.Execute()
}
