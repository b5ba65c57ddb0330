package main

import (
	"github.com/memoir-notes/memoir/internal/command"
	"github.com/memoir-notes/memoir/internal/command/documents"
	"github.com/memoir-notes/memoir/internal/command/relay"
)

func main() {
	command.Main(
		"memoir-cli", "a memoir client tool",
		relay.Command(),
		documents.Command(),
	)
}
