package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	gointake "github.com/goliatone/go-intake"
	"github.com/goliatone/go-intake/internal/config"
	"github.com/goliatone/go-intake/internal/logging"
	"github.com/goliatone/go-intake/pkg/contract"
	"github.com/goliatone/go-intake/pkg/form"
	"github.com/goliatone/go-intake/pkg/intake"
	"github.com/goliatone/go-intake/pkg/renderers/tui"
	"github.com/goliatone/go-intake/pkg/schema"
	"github.com/goliatone/go-intake/pkg/submission"
	"github.com/goliatone/go-intake/pkg/validation"
)

const usage = `usage: intake-cli [-config FILE] <command> [flags]

commands:
  postulante                       fill and send the applicant form
  conyuge [-cedula DOC] [-demo]    fill and send the spouse form
  vacunas -cedula DOC              fill the vaccination form
  contract [-format json|yaml]     print the OpenAPI document
  validate [-form ID] [-json] FILE validate a JSON or YAML record
`

// maxRounds bounds review/fix cycles on one form.
const maxRounds = 3

var errInvalidRecord = errors.New("record has errors")

// environment carries what main wires from the process; tests replace it.
type environment struct {
	stdout io.Writer
	stderr io.Writer
	driver tui.PromptDriver
	client submission.Doer
	sleep  submission.Sleeper
}

type app struct {
	env     environment
	cfg     config.Config
	logger  *zap.Logger
	catalog intake.Catalog
	opts    []intake.SchemaOption
	runner  *tui.Runner
}

func run(ctx context.Context, args []string, env environment) error {
	global := flag.NewFlagSet("intake-cli", flag.ContinueOnError)
	global.SetOutput(env.stderr)
	global.Usage = func() { fmt.Fprint(env.stderr, usage) }
	configPath := global.String("config", "", "configuration file (default intake.yaml when present)")
	if err := global.Parse(args); err != nil {
		return err
	}
	if global.NArg() == 0 {
		global.Usage()
		return errors.New("missing command")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	a, err := newApp(cfg, env)
	if err != nil {
		return err
	}
	defer func() { _ = a.logger.Sync() }()

	command, rest := global.Arg(0), global.Args()[1:]
	switch command {
	case intake.FormApplicant:
		return a.applicant(ctx, rest)
	case intake.FormSpouse:
		return a.spouse(ctx, rest)
	case intake.FormVaccination:
		return a.vaccination(ctx, rest)
	case "contract":
		return a.contract(ctx, rest)
	case "validate":
		return a.validate(rest)
	default:
		global.Usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func newApp(cfg config.Config, env environment) (*app, error) {
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}
	catalog, err := intake.LoadCatalog(cfg.Catalog)
	if err != nil {
		return nil, err
	}
	variant, ok := intake.ParseVariant(cfg.Variant)
	if !ok {
		logger.Warn("unknown variant, using strict", zap.String("variant", cfg.Variant))
	}

	driver := env.driver
	if driver == nil {
		driver = tui.NewSurveyDriver(env.stdout)
	}
	return &app{
		env:     env,
		cfg:     cfg,
		logger:  logger,
		catalog: catalog,
		opts:    []intake.SchemaOption{intake.WithVariant(variant)},
		runner: tui.New(
			tui.WithPromptDriver(driver),
			tui.WithCatalog(catalog),
			tui.WithLogger(logger.Named("tui")),
		),
	}, nil
}

func (a *app) applicant(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet(intake.FormApplicant, flag.ContinueOnError)
	fs.SetOutput(a.env.stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	target, err := a.runForm(ctx, intake.Applicant(a.catalog, a.opts...), "", nil)
	if err != nil {
		return err
	}
	return a.follow(ctx, target)
}

func (a *app) spouse(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet(intake.FormSpouse, flag.ContinueOnError)
	fs.SetOutput(a.env.stderr)
	doc := fs.String("cedula", "", "applicant document number")
	demo := fs.Bool("demo", false, "start from the demo spouse record")
	if err := fs.Parse(args); err != nil {
		return err
	}
	var seed schema.Record
	if *demo {
		seed = intake.DemoSpouseDefaults()
	}
	target, err := a.runForm(ctx, intake.Spouse(a.catalog, a.opts...), strings.TrimSpace(*doc), seed)
	if err != nil {
		return err
	}
	return a.follow(ctx, target)
}

func (a *app) vaccination(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet(intake.FormVaccination, flag.ContinueOnError)
	fs.SetOutput(a.env.stderr)
	doc := fs.String("cedula", "", "applicant document number")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*doc) == "" {
		return errors.New("vacunas: -cedula is required")
	}
	_, err := a.runForm(ctx, intake.Vaccination(a.catalog, a.opts...), strings.TrimSpace(*doc), nil)
	return err
}

// follow opens each form a successful submission navigates to.
func (a *app) follow(ctx context.Context, target string) error {
	for target != "" {
		route, err := submission.ParseRoute(target)
		if err != nil {
			return err
		}
		def, err := intake.Lookup(route.Form, a.catalog, a.opts...)
		if err != nil {
			return err
		}
		a.logger.Info("opening form", zap.String("form", def.ID), zap.String("document", route.Document))
		target, err = a.runForm(ctx, def, route.Document, nil)
		if err != nil {
			return err
		}
	}
	return nil
}

func (a *app) mode(def intake.Definition) form.Mode {
	raw := a.cfg.Mode
	if raw == "" {
		raw = string(def.Trigger)
	}
	mode, ok := form.ParseMode(raw)
	if !ok {
		a.logger.Warn("unknown validation mode", zap.String("mode", raw))
	}
	return mode
}

// runForm fills, reviews and, when the form has an endpoint, submits def. It
// returns the navigation target of a successful submission.
func (a *app) runForm(ctx context.Context, def intake.Definition, doc string, seed schema.Record) (string, error) {
	defaults := seed
	if defaults == nil {
		defaults = def.Defaults()
	}
	f := form.New(def.Schema, defaults,
		form.WithMode(a.mode(def)),
		form.WithLogger(a.logger.Named("form")),
	)
	if doc != "" && def.LinkField != "" {
		if _, err := f.BindOnce(doc, def.LinkField, doc); err != nil {
			return "", err
		}
	}

	if err := a.runner.Heading(ctx, def.Title, def.Subtitle); err != nil {
		return "", err
	}
	if err := a.runner.Fill(ctx, f); err != nil {
		return "", err
	}

	var handler *submission.Handler
	if def.Path != "" {
		h, err := a.handler(ctx, def)
		if err != nil {
			return "", err
		}
		handler = h
	}

	for round := 1; ; round++ {
		if round > maxRounds {
			return "", fmt.Errorf("%s: giving up after %d attempts", def.ID, maxRounds)
		}

		notice := ""
		if handler == nil {
			notice = "Este formulario no tiene envío remoto; el registro se imprime en la salida estándar."
		}
		if err := a.runner.Review(ctx, def.Title, f, notice); err != nil {
			if errors.Is(err, tui.ErrIncomplete) {
				if err := a.runner.Fix(ctx, f); err != nil {
					return "", err
				}
				continue
			}
			return "", err
		}

		if handler == nil {
			payload, _ := f.Payload()
			return "", writeJSON(a.env.stdout, payload)
		}

		outcome, err := handler.Submit(ctx, f)
		switch {
		case errors.Is(err, submission.ErrNotSubmittable):
			if err := a.runner.Fix(ctx, f); err != nil {
				return "", err
			}
			continue
		case err != nil:
			return "", err
		case outcome.Kind.Success():
			return outcome.Target, nil
		case len(outcome.FieldErrors) > 0:
			if err := a.runner.Fix(ctx, f); err != nil {
				return "", err
			}
			continue
		}

		again, err := a.runner.Ask(ctx, "¿Intentar de nuevo?", true)
		if err != nil {
			return "", err
		}
		if !again {
			return "", fmt.Errorf("%s: %s", def.ID, outcome.Notification.Message)
		}
	}
}

func (a *app) handler(ctx context.Context, def intake.Definition) (*submission.Handler, error) {
	return gointake.NewSubmitter(def, a.cfg.APIBase,
		submission.WithClient(a.env.client),
		submission.WithResetDelay(a.cfg.ResetDelay),
		submission.WithSettleDelay(a.cfg.SettleDelay),
		submission.WithLogger(a.logger.Named("submission")),
		submission.WithSink(a.runner.Sink(ctx)),
		submission.WithSleeper(a.env.sleep),
	)
}

func (a *app) contract(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("contract", flag.ContinueOnError)
	fs.SetOutput(a.env.stderr)
	format := fs.String("format", "yaml", "output format: json or yaml")
	if err := fs.Parse(args); err != nil {
		return err
	}

	defs := []intake.Definition{
		intake.Applicant(a.catalog, a.opts...),
		intake.Spouse(a.catalog, a.opts...),
		intake.Vaccination(a.catalog, a.opts...),
	}
	doc, err := contract.Build(ctx, defs, contract.Options{ServerURL: a.cfg.APIBase})
	if err != nil {
		return err
	}

	var out []byte
	switch strings.ToLower(*format) {
	case "json":
		out, err = contract.JSON(doc)
	case "yaml", "yml":
		out, err = contract.YAML(doc)
	default:
		return fmt.Errorf("contract: unknown format %q", *format)
	}
	if err != nil {
		return err
	}
	_, err = a.env.stdout.Write(out)
	return err
}

func (a *app) validate(args []string) error {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	fs.SetOutput(a.env.stderr)
	id := fs.String("form", intake.FormApplicant, "form id: postulante, conyuge or vacunas")
	asJSON := fs.Bool("json", false, "print the full report as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("validate: expected exactly one file")
	}
	def, err := intake.Lookup(*id, a.catalog, a.opts...)
	if err != nil {
		return err
	}
	record, err := readRecord(fs.Arg(0))
	if err != nil {
		return err
	}

	report := validation.Check(def.Schema, record)
	switch {
	case *asJSON:
		if err := writeJSON(a.env.stdout, report); err != nil {
			return err
		}
	case report.Valid:
		return writeJSON(a.env.stdout, report.Data)
	default:
		for _, issue := range report.Issues {
			fmt.Fprintf(a.env.stdout, "%s: %s\n", issue.Path, issue.Message)
		}
	}
	if !report.Valid {
		return fmt.Errorf("%w: %d issue(s)", errInvalidRecord, len(report.Issues))
	}
	return nil
}

func readRecord(path string) (schema.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}
	var record schema.Record
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &record)
	default:
		err = json.Unmarshal(data, &record)
	}
	if err != nil {
		return nil, fmt.Errorf("validate: parse %s: %w", path, err)
	}
	return record, nil
}

func writeJSON(w io.Writer, value any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(value)
}
