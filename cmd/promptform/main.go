package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-promptform/internal/config"
	"github.com/goliatone/go-promptform/internal/server"
	"github.com/goliatone/go-promptform/internal/store"
	"github.com/goliatone/go-promptform/pkg/editor"
	"github.com/goliatone/go-promptform/pkg/model"
	"github.com/goliatone/go-promptform/pkg/normalize"
	"github.com/goliatone/go-promptform/pkg/oracle"
	"github.com/goliatone/go-promptform/pkg/render/preview"
	"github.com/goliatone/go-promptform/pkg/submit"
	"github.com/goliatone/go-promptform/pkg/tui"
)

var rootCmd = &cobra.Command{
	Use:   "promptform",
	Short: "Generate, edit, fill, and serve AI-drafted forms",
}

func main() {
	cobra.OnInitialize(initViper)
	addPersistentFlags()
	registerCommands()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func initViper() {
	viper.SetEnvPrefix("PROMPTFORM")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().StringP("workspace", "w", ".", "workspace directory")
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	_ = viper.BindPFlag("workspace", rootCmd.PersistentFlags().Lookup("workspace"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func registerCommands() {
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(generateCmd())
	rootCmd.AddCommand(formsCmd())
	rootCmd.AddCommand(fieldsCmd())
	rootCmd.AddCommand(fillCmd())
	rootCmd.AddCommand(responsesCmd())
}

func loadConfig() (*config.Config, error) {
	return config.Load(viper.GetString("workspace"))
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = level
	return zcfg.Build()
}

func withStore(fn func(ctx context.Context, cfg *config.Config, st *store.SQLite) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := store.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(context.Background(), cfg, st)
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(ctx context.Context, cfg *config.Config, st *store.SQLite) error {
				log, err := newLogger(cfg)
				if err != nil {
					return err
				}
				defer log.Sync()

				gen, err := oracle.NewGemini(oracle.GeminiConfig{
					APIKey:  cfg.Gemini.APIKey,
					BaseURL: cfg.Gemini.BaseURL,
					Model:   cfg.Gemini.Model,
					Logger:  log,
				})
				if err != nil {
					return err
				}
				renderer, err := preview.New()
				if err != nil {
					return err
				}
				handler, err := server.New(server.Config{
					Store:     st,
					Generator: gen,
					Preview:   renderer,
					BasePath:  cfg.BasePath,
					Logger:    log,
				})
				if err != nil {
					return err
				}
				log.Info("listening", zap.String("addr", cfg.Listen))
				return http.ListenAndServe(cfg.Listen, handler)
			})
		},
	}
}

func generateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate <prompt>",
		Short: "Generate a form schema from a prompt and store it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(ctx context.Context, cfg *config.Config, st *store.SQLite) error {
				gen, err := oracle.NewGemini(oracle.GeminiConfig{
					APIKey:  cfg.Gemini.APIKey,
					BaseURL: cfg.Gemini.BaseURL,
					Model:   cfg.Gemini.Model,
				})
				if err != nil {
					return err
				}
				prompt := strings.Join(args, " ")
				text, err := gen.Generate(ctx, prompt)
				if err != nil {
					return err
				}
				schema, err := normalize.Normalize([]byte(text))
				if err != nil {
					return err
				}

				now := time.Now().UTC()
				rec := store.FormRecord{
					ID:        uuid.NewString(),
					Prompt:    prompt,
					Schema:    schema,
					CreatedAt: now,
					UpdatedAt: now,
				}
				rec.Schema.ID = rec.ID
				if err := st.SaveForm(ctx, rec); err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(rec.Schema)
				}
				fmt.Println("form", rec.ID)
				printSchemaTable(rec.Schema)
				return nil
			})
		},
	}
}

func formsCmd() *cobra.Command {
	forms := &cobra.Command{Use: "forms", Short: "Manage stored forms"}
	forms.AddCommand(formsListCmd())
	forms.AddCommand(formsShowCmd())
	forms.AddCommand(formsExportCmd())
	forms.AddCommand(formsDeleteCmd())
	return forms
}

func formsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List forms",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(ctx context.Context, _ *config.Config, st *store.SQLite) error {
				records, err := st.ListForms(ctx)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(records)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Title", "Fields", "Created"})
				for _, rec := range records {
					tw.AppendRow(table.Row{
						rec.ID,
						rec.Schema.Title,
						len(rec.Schema.Fields),
						rec.CreatedAt.Format(time.RFC3339),
					})
				}
				tw.Render()
				return nil
			})
		},
	}
}

func formsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <form-id>",
		Short: "Show one form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(ctx context.Context, _ *config.Config, st *store.SQLite) error {
				rec, err := st.GetForm(ctx, args[0])
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(rec.Schema)
				}
				if rec.Schema.Title != "" {
					fmt.Println(rec.Schema.Title)
				}
				printSchemaTable(rec.Schema)
				return nil
			})
		},
	}
}

func formsExportCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "export <form-id>",
		Short: "Export a form schema as JSON or YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(ctx context.Context, _ *config.Config, st *store.SQLite) error {
				rec, err := st.GetForm(ctx, args[0])
				if err != nil {
					return err
				}
				switch format {
				case "json":
					return printJSON(rec.Schema)
				case "yaml":
					// round-trip through JSON so the YAML keys match the
					// wire format
					raw, err := json.Marshal(rec.Schema)
					if err != nil {
						return err
					}
					var doc map[string]any
					if err := json.Unmarshal(raw, &doc); err != nil {
						return err
					}
					out, err := yaml.Marshal(doc)
					if err != nil {
						return err
					}
					fmt.Print(string(out))
					return nil
				default:
					return fmt.Errorf("unknown format %q (want json or yaml)", format)
				}
			})
		},
	}
	cmd.Flags().StringVarP(&format, "output", "o", "json", "output format (json, yaml)")
	return cmd
}

func formsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <form-id>",
		Short: "Delete a form and its responses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(ctx context.Context, _ *config.Config, st *store.SQLite) error {
				if err := st.DeleteForm(ctx, args[0]); err != nil {
					return err
				}
				fmt.Println("deleted", args[0])
				return nil
			})
		},
	}
}

type fieldFlags struct {
	name      string
	label     string
	kind      string
	required  bool
	options   []string
	accept    string
	maxSizeMB float64
}

func (f fieldFlags) definition() model.FieldDefinition {
	var options []string
	if len(f.options) > 0 {
		options = f.options
	}
	return model.FieldDefinition{
		Name:      f.name,
		Label:     f.label,
		Kind:      model.ParseKind(f.kind, len(options) > 0),
		Required:  f.required,
		Options:   options,
		Accept:    f.accept,
		MaxSizeMB: f.maxSizeMB,
	}
}

func addFieldFlags(cmd *cobra.Command, f *fieldFlags) {
	cmd.Flags().StringVar(&f.name, "name", "", "field name (snake_case)")
	cmd.Flags().StringVar(&f.label, "label", "", "display label")
	cmd.Flags().StringVar(&f.kind, "type", "text", "field type")
	cmd.Flags().BoolVar(&f.required, "required", false, "mark field required")
	cmd.Flags().StringSliceVar(&f.options, "options", nil, "options for select/radio/checkbox group")
	cmd.Flags().StringVar(&f.accept, "accept", "", "accepted file types")
	cmd.Flags().Float64Var(&f.maxSizeMB, "max-size-mb", 0, "max file size in MB")
}

func fieldsCmd() *cobra.Command {
	fields := &cobra.Command{Use: "fields", Short: "Edit a form's fields"}
	fields.AddCommand(fieldsAddCmd())
	fields.AddCommand(fieldsUpdateCmd())
	fields.AddCommand(fieldsDeleteCmd())
	fields.AddCommand(fieldsMoveCmd())
	return fields
}

func editSchema(formID string, op func(model.FormSchema) (model.FormSchema, error)) error {
	return withStore(func(ctx context.Context, _ *config.Config, st *store.SQLite) error {
		rec, err := st.GetForm(ctx, formID)
		if err != nil {
			return err
		}
		next, err := op(rec.Schema)
		if err != nil {
			return err
		}
		if err := st.UpdateFormSchema(ctx, formID, next); err != nil {
			return err
		}
		if viper.GetBool("json") {
			return printJSON(next)
		}
		printSchemaTable(next)
		return nil
	})
}

func fieldsAddCmd() *cobra.Command {
	var f fieldFlags
	cmd := &cobra.Command{
		Use:   "add <form-id>",
		Short: "Append a field",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editSchema(args[0], func(schema model.FormSchema) (model.FormSchema, error) {
				return editor.AddField(schema, f.definition())
			})
		},
	}
	addFieldFlags(cmd, &f)
	return cmd
}

func fieldsUpdateCmd() *cobra.Command {
	var f fieldFlags
	var index int
	cmd := &cobra.Command{
		Use:   "update <form-id>",
		Short: "Update a field in place",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editSchema(args[0], func(schema model.FormSchema) (model.FormSchema, error) {
				return editor.UpdateField(schema, index, f.definition())
			})
		},
	}
	cmd.Flags().IntVar(&index, "index", 0, "field position")
	addFieldFlags(cmd, &f)
	return cmd
}

func fieldsDeleteCmd() *cobra.Command {
	var index int
	cmd := &cobra.Command{
		Use:   "delete <form-id>",
		Short: "Delete a field",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editSchema(args[0], func(schema model.FormSchema) (model.FormSchema, error) {
				return editor.DeleteField(schema, index)
			})
		},
	}
	cmd.Flags().IntVar(&index, "index", 0, "field position")
	return cmd
}

func fieldsMoveCmd() *cobra.Command {
	var index int
	var direction string
	cmd := &cobra.Command{
		Use:   "move <form-id>",
		Short: "Move a field up or down",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editSchema(args[0], func(schema model.FormSchema) (model.FormSchema, error) {
				return editor.MoveField(schema, index, editor.Direction(direction))
			})
		},
	}
	cmd.Flags().IntVar(&index, "index", 0, "field position")
	cmd.Flags().StringVar(&direction, "direction", "up", "up or down")
	return cmd
}

func fillCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fill <form-id>",
		Short: "Fill a form interactively and store the response",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(ctx context.Context, _ *config.Config, st *store.SQLite) error {
				rec, err := st.GetForm(ctx, args[0])
				if err != nil {
					return err
				}

				filler := tui.NewFiller(tui.NewDriver())
				set, err := filler.Fill(ctx, rec.Schema)
				if err != nil {
					return err
				}
				payload, err := submit.Assemble(set)
				if err != nil {
					return err
				}

				resp := store.ResponseRecord{
					ID:          uuid.NewString(),
					FormID:      rec.ID,
					Values:      payload.Values,
					Status:      "completed",
					SubmittedAt: time.Now().UTC(),
				}
				var files []store.AttachmentRecord
				for name, att := range payload.Files {
					files = append(files, store.AttachmentRecord{
						ID:         uuid.NewString(),
						ResponseID: resp.ID,
						Field:      name,
						Filename:   att.Filename,
						MIMEType:   att.MIMEType,
						Size:       att.Size,
						Data:       att.Data,
					})
				}
				if err := st.SaveResponse(ctx, resp, files); err != nil {
					return err
				}
				fmt.Println("response", resp.ID)
				return nil
			})
		},
	}
}

func responsesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "responses <form-id>",
		Short: "List responses for a form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(ctx context.Context, _ *config.Config, st *store.SQLite) error {
				records, err := st.ListResponses(ctx, args[0])
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(records)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Status", "Submitted", "Answers"})
				for _, rec := range records {
					tw.AppendRow(table.Row{
						rec.ID,
						rec.Status,
						rec.SubmittedAt.Format(time.RFC3339),
						len(rec.Values),
					})
				}
				tw.Render()
				return nil
			})
		},
	}
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func printSchemaTable(schema model.FormSchema) {
	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.AppendHeader(table.Row{"#", "Name", "Label", "Type", "Required", "Options"})
	for i, field := range schema.Fields {
		tw.AppendRow(table.Row{
			i,
			field.Name,
			field.Label,
			string(field.Kind),
			field.Required,
			strings.Join(field.Options, ", "),
		})
	}
	tw.Render()
}
