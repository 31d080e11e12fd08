package main

import "github.com/MeKo-Tech/texrecolor/internal/cmd"

func main() {
	cmd.Execute()
}
