package main

import "github.com/MeKo-Tech/slipscan/cmd/slipscan/cmd"

func main() {
	cmd.Execute()
}
