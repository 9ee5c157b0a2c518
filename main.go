package main

import "github.com/inovacc/labctl/cmd"

func main() {
	cmd.Execute()
}
