package main

import "k3l.io/go-amge/cmd/amge/cmd"

func main() {
	cmd.Execute()
}
