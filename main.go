package main

import "github.com/riptano/argus/cmd"

func main() {
	cmd.Execute()
}
