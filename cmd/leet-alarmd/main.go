package main

import "github.com/oshokin/leet-alarm/cmd/leet-alarmd/cmd"

func main() {
	cmd.Execute()
}
