package main

import "github.com/zfogg/clipfeed/cli/internal/cmd"

func main() {
	cmd.Execute()
}
