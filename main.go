package main

import "github.com/silanhu/easycli/internal/commands"

func main() {
	commands.Execute()
}
