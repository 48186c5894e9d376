package main

import "github.com/samuelfneumann/ur5reach/cmd"

func main() {
	cmd.Execute()
}
