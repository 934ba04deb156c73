package main

import "github.com/cukefmt/cukefmt/cmd"

func main() {
	cmd.Execute()
}
