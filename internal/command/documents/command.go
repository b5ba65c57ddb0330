package documents

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/memoir-notes/memoir/internal/adapter/notion"
	"github.com/memoir-notes/memoir/internal/core/model"
	"github.com/memoir-notes/memoir/internal/core/port"
	"github.com/memoir-notes/memoir/internal/core/service"
	"github.com/memoir-notes/memoir/internal/integration"
	"github.com/memoir-notes/memoir/internal/markdown"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

const (
	paramFilter     = "filter"
	paramKind       = "kind"
	paramAPIKey     = "api-key"
	paramPageID     = "page-id"
	paramDatabaseID = "database-id"
	paramURL        = "url"
)

func Command() *cli.Command {
	return &cli.Command{
		Name:  "documents",
		Usage: "Work with documents stored in the Memoir backend",
		Subcommands: []*cli.Command{
			listCommand(),
			uploadCommand(),
			summaryCommand(),
			regenerateCommand(),
			exportCommand(),
			connectionCommand(),
		},
	}
}

func listCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List documents, optionally filtered by name",
		Flags: withDocumentsFlags(
			&cli.StringFlag{
				Name:  paramFilter,
				Usage: "Case-insensitive name filter",
			},
		),
		Action: func(cCtx *cli.Context) error {
			ctx := cCtx.Context

			pipeline, err := getPipeline(cCtx)
			if err != nil {
				return errors.WithStack(err)
			}
			defer pipeline.Close()

			if _, err := pipeline.LoadDocuments(ctx); err != nil {
				return errors.Wrap(err, "could not load documents")
			}

			for _, d := range pipeline.Filter(cCtx.String(paramFilter)) {
				fmt.Printf("%s\t%s\t%s\n", d.ID, d.Name, d.BaseFileName())
			}

			return nil
		},
	}
}

func uploadCommand() *cli.Command {
	return &cli.Command{
		Name:      "upload",
		Usage:     "Upload one or more files to the backend",
		ArgsUsage: "<file> [<file>...]",
		Flags:     withDocumentsFlags(),
		Action: func(cCtx *cli.Context) error {
			ctx := cCtx.Context

			if cCtx.Args().Len() == 0 {
				return errors.New("missing file arguments")
			}

			backend, err := getBackendClient(cCtx)
			if err != nil {
				return errors.WithStack(err)
			}

			uploads := make([]port.Upload, 0, cCtx.Args().Len())
			files := make([]*os.File, 0, cCtx.Args().Len())

			defer func() {
				for _, f := range files {
					f.Close()
				}
			}()

			for _, path := range cCtx.Args().Slice() {
				f, err := os.Open(path)
				if err != nil {
					return errors.Wrapf(err, "could not open file '%s'", path)
				}

				files = append(files, f)

				name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

				uploads = append(uploads, port.Upload{
					Name:     name,
					FileName: filepath.Base(path),
					Data:     f,
				})
			}

			documents, err := backend.UploadDocuments(ctx, uploads)
			if err != nil {
				return errors.Wrap(err, "could not upload documents")
			}

			for _, d := range documents {
				fmt.Printf("%s\t%s\n", d.ID, d.Name)
			}

			return nil
		},
	}
}

func summaryCommand() *cli.Command {
	return &cli.Command{
		Name:      "summary",
		Usage:     "Fetch and print the summary of a document",
		ArgsUsage: "<documentID>",
		Flags:     withDocumentsFlags(),
		Action: func(cCtx *cli.Context) error {
			ctx := cCtx.Context

			id, err := documentIDArg(cCtx)
			if err != nil {
				return errors.WithStack(err)
			}

			pipeline, err := getPipeline(cCtx)
			if err != nil {
				return errors.WithStack(err)
			}
			defer pipeline.Close()

			artifact, err := pipeline.Expand(ctx, id)
			if err != nil {
				return errors.Wrap(err, "could not fetch summary")
			}

			return printArtifact(artifact)
		},
	}
}

func regenerateCommand() *cli.Command {
	return &cli.Command{
		Name:      "regenerate",
		Usage:     "Regenerate the OCR text or summary of a document",
		ArgsUsage: "<documentID>",
		Flags: withDocumentsFlags(
			&cli.StringFlag{
				Name:  paramKind,
				Value: string(model.ArtifactKindSummary),
				Usage: "Artifact kind to regenerate ('ocr' or 'summary')",
			},
		),
		Action: func(cCtx *cli.Context) error {
			ctx := cCtx.Context

			id, err := documentIDArg(cCtx)
			if err != nil {
				return errors.WithStack(err)
			}

			kind := model.ArtifactKind(cCtx.String(paramKind))
			if kind != model.ArtifactKindOCR && kind != model.ArtifactKindSummary {
				return errors.Errorf("unexpected artifact kind '%s'", kind)
			}

			pipeline, err := getPipeline(cCtx)
			if err != nil {
				return errors.WithStack(err)
			}
			defer pipeline.Close()

			artifact, err := pipeline.Regenerate(ctx, id, kind)
			if err != nil {
				return errors.Wrap(err, "could not regenerate artifact")
			}

			return printArtifact(artifact)
		},
	}
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Export the summary of a document to your Notion workspace",
		ArgsUsage: "<documentID>",
		Flags: withDocumentsFlags(
			&cli.StringFlag{
				Name:    paramAPIKey,
				Aliases: []string{"k"},
				EnvVars: []string{"MEMOIR_CLI_API_KEY"},
				Usage:   "Notion API key used for the export",
			},
			&cli.StringFlag{
				Name:  paramPageID,
				Usage: "Append to an existing page instead of creating one",
			},
			&cli.StringFlag{
				Name:  paramDatabaseID,
				Usage: "Database to create the page in",
			},
		),
		Action: func(cCtx *cli.Context) error {
			ctx := cCtx.Context

			id, err := documentIDArg(cCtx)
			if err != nil {
				return errors.WithStack(err)
			}

			pipeline, err := getPipeline(cCtx)
			if err != nil {
				return errors.WithStack(err)
			}
			defer pipeline.Close()

			if _, err := pipeline.LoadDocuments(ctx); err != nil {
				return errors.Wrap(err, "could not load documents")
			}

			if _, err := pipeline.Expand(ctx, id); err != nil {
				return errors.Wrap(err, "could not fetch summary")
			}

			record, err := pipeline.Export(ctx, id, cCtx.String(paramAPIKey), service.ExportDestination{
				PageID:     cCtx.String(paramPageID),
				DatabaseID: cCtx.String(paramDatabaseID),
			})
			if err != nil {
				return errors.Wrap(err, "could not export document")
			}

			fmt.Printf("exported %s\n%s\n", record.PageID, record.PageURL)

			return nil
		},
	}
}

func connectionCommand() *cli.Command {
	return &cli.Command{
		Name:  "connection",
		Usage: "Show or resume the Notion integration of the backend account",
		Flags: withDocumentsFlags(
			&cli.StringFlag{
				Name:  paramURL,
				Usage: "Return URL of the integration redirect to resume from",
			},
		),
		Action: func(cCtx *cli.Context) error {
			ctx := cCtx.Context

			backend, err := getBackendClient(cCtx)
			if err != nil {
				return errors.WithStack(err)
			}

			if rawURL := cCtx.String(paramURL); rawURL != "" {
				u, err := url.Parse(rawURL)
				if err != nil {
					return errors.Wrapf(err, "could not parse url '%s'", rawURL)
				}

				result, err := integration.NewFlow(backend).Resume(ctx, u)
				if err != nil {
					return errors.Wrap(err, "could not resume the integration")
				}

				printLink(result.Link)

				return nil
			}

			link, err := backend.NotionStatus(ctx)
			if err != nil {
				return errors.Wrap(err, "could not read the integration status")
			}

			printLink(link)

			return nil
		},
	}
}

func getPipeline(cCtx *cli.Context) (*service.DocumentPipeline, error) {
	backend, err := getBackendClient(cCtx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	converter := markdown.NewConverter()
	factory := notion.NewFactory(30 * time.Second)

	return service.NewDocumentPipeline(backend, converter, factory), nil
}

func documentIDArg(cCtx *cli.Context) (model.DocumentID, error) {
	id := cCtx.Args().First()
	if id == "" {
		return "", errors.New("missing document id argument")
	}

	return model.DocumentID(id), nil
}

func printLink(link *model.IntegrationLink) {
	switch {
	case link == nil:
		fmt.Println("nothing to resume")
	case link.Connected:
		fmt.Printf("connected to workspace %q\n", link.WorkspaceName)
	default:
		fmt.Println("not connected")
	}
}

func printArtifact(artifact model.Artifact) error {
	if artifact.Status == model.ArtifactStatusFailed {
		return errors.Errorf("artifact generation failed: %s", artifact.Reason)
	}

	fmt.Println(artifact.Text)

	return nil
}
