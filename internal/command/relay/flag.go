package relay

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

const (
	paramInput      = "input"
	paramPageID     = "page-id"
	paramDatabaseID = "database-id"
	paramTitle      = "title"
)

var (
	flagInput = &cli.StringFlag{
		Name:    paramInput,
		Aliases: []string{"i"},
		Value:   "-",
		Usage:   "Path to the markdown file (use '-' for stdin)",
	}
	flagPageID = &cli.StringFlag{
		Name:  paramPageID,
		Usage: "Append to an existing page instead of creating one",
	}
	flagDatabaseID = &cli.StringFlag{
		Name:  paramDatabaseID,
		Usage: "Database to create the page in",
	}
	flagTitle = &cli.StringFlag{
		Name:  paramTitle,
		Usage: "Title of the created page",
	}
)

func readInput(ctx *cli.Context) (string, error) {
	input := ctx.String(paramInput)

	if input == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", errors.WithStack(err)
		}

		return string(data), nil
	}

	data, err := os.ReadFile(input)
	if err != nil {
		return "", errors.Wrapf(err, "could not read input file '%s'", input)
	}

	return string(data), nil
}
