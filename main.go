package main

import "github.com/tanq16/godotfetch/cmd"

func main() {
	cmd.Execute()
}
