package main

import (
	"github.com/presenced/presenced/cmd/pctl/arg"
)

func main() {
	arg.Execute()
}
