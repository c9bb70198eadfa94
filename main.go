package main

import "github.com/theirongolddev/mobius/cmd"

func main() {
	cmd.Execute()
}
