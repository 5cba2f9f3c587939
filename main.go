package main

import "github.com/gridkv/gridkv/cmd"

func main() {
	cmd.Execute()
}
