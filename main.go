package main

import "github.com/galeproject/gale/cmd"

func main() {
	cmd.Execute()
}
