package main

import "github.com/ababil/ababil/cmd"

func main() {
	cmd.Execute()
}
