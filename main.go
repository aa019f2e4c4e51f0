package main

import "github.com/ntananh/github-stats/cmd"

func main() {
	cmd.Execute()
}
