package main

import "github.com/llehouerou/reprise/internal/cli"

func main() {
	cli.Execute()
}
