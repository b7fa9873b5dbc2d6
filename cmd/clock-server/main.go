package main

import "github.com/mapler/socialclock/cmd/clock-server/cmd"

func main() {
	cmd.Execute()
}
