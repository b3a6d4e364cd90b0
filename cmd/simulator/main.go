package main

import (
	"go.uber.org/automaxprocs/maxprocs"
)

func main() {
	maxprocs.Set()
	Execute()
}
