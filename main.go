package main

import "github.com/naka-gawa/github-stats/cmd"

func main() {
	cmd.Execute()
}
