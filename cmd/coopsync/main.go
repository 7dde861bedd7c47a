package main

import "github.com/rooststack/coopsync/cmd/coopsync/cmd"

var Version = "dev"

func main() {
	cmd.Execute(Version)
}
