package main

import "github.com/testwing/testwing/cmd"

func main() {
	cmd.Execute()
}
