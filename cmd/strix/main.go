package main

import (
	"go.brendoncarroll.net/star"

	"github.com/cronokirby/strix/internal/strix/strixcmd"
)

func main() {
	star.Main(strixcmd.Root())
}
