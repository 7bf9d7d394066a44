package main

import "github.com/fystack/radixium/cmd/radixium/cmd"

func main() {
	cmd.Execute()
}
