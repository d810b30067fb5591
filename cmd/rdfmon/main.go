package main

import "github.com/sanwatch/rdfmon/internal/cmd"

func main() {
	cmd.Execute()
}
