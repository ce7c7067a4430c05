package main

import "github.com/arvonet/dualroute/cmd"

func main() {
	cmd.Execute()
}
