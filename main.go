package main

import "github.com/qrave1/confeet-agent/cmd"

func main() {
	cmd.Execute()
}
