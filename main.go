package main

import "bmapp/cmd"

func main() {
	cmd.Execute()
}
