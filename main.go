package main

import "github.com/envelope-zero/analytics/cmd"

func main() {
	cmd.Execute()
}
