package main

import "github.com/oshokin/leet-alarm/cmd/leet-alarm/cmd"

func main() {
	cmd.Execute()
}
