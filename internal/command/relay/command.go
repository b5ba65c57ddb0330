package relay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/memoir-notes/memoir/internal/command/common"
	"github.com/memoir-notes/memoir/internal/http/handler/relay"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

func Command() *cli.Command {
	return &cli.Command{
		Name:  "relay",
		Usage: "Drive the relay API",
		Subcommands: []*cli.Command{
			convertCommand(),
			sendCommand(),
			workspaceCommand(),
			pageCommand(),
		},
	}
}

func convertCommand() *cli.Command {
	return &cli.Command{
		Name:  "convert",
		Usage: "Convert a markdown file to Notion blocks and print them",
		Flags: common.WithCommonFlags(
			flagInput,
		),
		Action: func(cCtx *cli.Context) error {
			ctx := cCtx.Context

			markdown, err := readInput(cCtx)
			if err != nil {
				return errors.WithStack(err)
			}

			relayClient, err := common.GetRelayClient(cCtx)
			if err != nil {
				return errors.Wrap(err, "could not retrieve relay client")
			}

			data, err := relayClient.Convert(ctx, markdown)
			if err != nil {
				return errors.WithStack(err)
			}

			return printJSON(data)
		},
	}
}

func sendCommand() *cli.Command {
	return &cli.Command{
		Name:  "send",
		Usage: "Convert a markdown file and send it to your Notion workspace",
		Flags: common.WithCommonFlags(
			flagInput,
			flagPageID,
			flagDatabaseID,
			flagTitle,
		),
		Action: func(cCtx *cli.Context) error {
			ctx := cCtx.Context

			markdown, err := readInput(cCtx)
			if err != nil {
				return errors.WithStack(err)
			}

			relayClient, err := common.GetRelayClient(cCtx)
			if err != nil {
				return errors.Wrap(err, "could not retrieve relay client")
			}

			data, err := relayClient.ConvertAndSend(ctx, relay.ConvertAndSendRequest{
				Markdown:   markdown,
				PageID:     cCtx.String(paramPageID),
				DatabaseID: cCtx.String(paramDatabaseID),
				Title:      cCtx.String(paramTitle),
			})
			if err != nil {
				return errors.WithStack(err)
			}

			fmt.Printf("created page %s\n%s\n", data.PageID, data.URL)

			return nil
		},
	}
}

func workspaceCommand() *cli.Command {
	return &cli.Command{
		Name:  "workspace",
		Usage: "List the pages and databases visible to your API key",
		Flags: common.WithCommonFlags(),
		Action: func(cCtx *cli.Context) error {
			ctx := cCtx.Context

			relayClient, err := common.GetRelayClient(cCtx)
			if err != nil {
				return errors.Wrap(err, "could not retrieve relay client")
			}

			data, err := relayClient.Workspace(ctx)
			if err != nil {
				return errors.WithStack(err)
			}

			for _, d := range data.Databases {
				fmt.Printf("database\t%s\t%s\n", d.ID, d.Title)
			}

			for _, p := range data.Pages {
				fmt.Printf("page\t%s\t%s\n", p.ID, p.Title)
			}

			return nil
		},
	}
}

func pageCommand() *cli.Command {
	return &cli.Command{
		Name:      "page",
		Usage:     "Retrieve a page and its blocks",
		ArgsUsage: "<pageID>",
		Flags:     common.WithCommonFlags(),
		Action: func(cCtx *cli.Context) error {
			ctx := cCtx.Context

			pageID := cCtx.Args().First()
			if pageID == "" {
				return errors.New("missing page id argument")
			}

			relayClient, err := common.GetRelayClient(cCtx)
			if err != nil {
				return errors.Wrap(err, "could not retrieve relay client")
			}

			data, err := relayClient.Page(ctx, pageID)
			if err != nil {
				return errors.WithStack(err)
			}

			return printJSON(data)
		},
	}
}

func printJSON(data any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(data); err != nil {
		return errors.WithStack(err)
	}

	return nil
}
