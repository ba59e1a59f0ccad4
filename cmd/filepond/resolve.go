package main

import (
	"context"
	"encoding/json"
	"io"

	"github.com/dmitrijs2005/filepond/internal/app"
	"github.com/dmitrijs2005/filepond/internal/field"
	"github.com/dmitrijs2005/filepond/internal/logging"
	"github.com/dmitrijs2005/filepond/internal/models"
	"github.com/spf13/cobra"
)

type resolvedUpload struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	MimeType string `json:"mimetype"`
	Path     string `json:"path,omitempty"`
	Size     int64  `json:"size,omitempty"`
	DataURL  string `json:"data_url,omitempty"`
}

type resolveOptions struct {
	actorToken string
	multiple   bool
	dataURL    bool
}

func resolveCmd() *cobra.Command {
	var opts resolveOptions

	cmd := &cobra.Command{
		Use:   "resolve <token>...",
		Short: "Resolve field tokens to their upload records",
		Long: `Decrypt the given field tokens, look up their upload records and print
them as JSON. Several tokens, or --multiple, make a multiple-valued field.

Tokens issued by this version never start with '-'. Put older tokens after
"--" (filepond resolve -- <token>).`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App, _ logging.Logger) error {
				ctx, err := a.Context(ctx, opts.actorToken)
				if err != nil {
					return err
				}
				return runResolve(ctx, cmd.OutOrStdout(), a.Resolver(), args, opts)
			})
		},
	}

	cmd.Flags().StringVar(&opts.actorToken, "token", "", "JWT naming the current actor")
	cmd.Flags().BoolVar(&opts.multiple, "multiple", false, "treat a single token as a multiple-valued field")
	cmd.Flags().BoolVar(&opts.dataURL, "data-url", false, "print the file contents as data URLs")

	return cmd
}

func fieldValue(tokens []string, multiple bool) any {
	if len(tokens) == 1 && !multiple {
		return tokens[0]
	}
	return tokens
}

func runResolve(ctx context.Context, w io.Writer, r *field.Resolver[*models.Upload], tokens []string, opts resolveOptions) error {
	res, err := r.Field(ctx, fieldValue(tokens, opts.multiple))
	if err != nil {
		return err
	}

	out := make([]resolvedUpload, 0, len(res.Records))
	for _, rec := range res.All() {
		item := resolvedUpload{ID: rec.ID, Filename: rec.Filename, MimeType: rec.Mimetypes}
		if opts.dataURL {
			if item.DataURL, err = r.DataURL(ctx, rec); err != nil {
				return err
			}
		} else {
			f, err := r.FileObject(ctx, rec)
			if err != nil {
				return err
			}
			item.Path, item.Size = f.Path, f.Size
		}
		out = append(out, item)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if res.Multiple {
		return enc.Encode(out)
	}
	if len(out) == 0 {
		return enc.Encode(nil)
	}
	return enc.Encode(out[0])
}
