package main

import (
	"github.com/courtsync/courtsync/internal/cli"
)

func main() {
	cli.Execute()
}
