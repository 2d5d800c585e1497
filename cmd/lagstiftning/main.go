package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	lagstiftning "github.com/lagstiftning/go-lagstiftning"
	"github.com/lagstiftning/go-lagstiftning/cmd/lagstiftning/internal/bootstrap"
	staticcmd "github.com/lagstiftning/go-lagstiftning/internal/commands/static"
)

type buildHandler interface {
	Execute(ctx context.Context, msg staticcmd.BuildSiteCommand) error
}

type cleanHandler interface {
	Execute(ctx context.Context, msg staticcmd.CleanSiteCommand) error
}

type validateHandler interface {
	Execute(ctx context.Context, msg staticcmd.ValidateRevisionsCommand) error
}

type handlerSet struct {
	build    buildHandler
	clean    cleanHandler
	validate validateHandler
}

type sectionsFunc func(ctx context.Context, identifier string) (*lagstiftning.Revision, []lagstiftning.Section, error)

type moduleResources struct {
	handlers handlerSet
	sections sectionsFunc
	watch    func(ctx context.Context) error
}

type moduleOptions = bootstrap.Options

var stdout io.Writer = os.Stdout

var moduleBuilder = func(opts moduleOptions) (*moduleResources, error) {
	resources, err := bootstrap.BuildModule(opts)
	if err != nil {
		return nil, err
	}
	module := resources.Module
	commands := module.Commands()
	return &moduleResources{
		handlers: handlerSet{
			build:    commands.Build,
			clean:    commands.Clean,
			validate: commands.Validate,
		},
		sections: module.Sections,
		watch:    module.Watch,
	}, nil
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCommand(stdout)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

type globalFlags struct {
	configPath  string
	source      string
	out         string
	basePath    string
	baseURL     string
	workers     int
	logLevel    string
	logProvider string
	sitemap     bool
}

func newRootCommand(stdout io.Writer) *cobra.Command {
	flags := &globalFlags{}
	root := &cobra.Command{
		Use:   "lagstiftning",
		Short: "Generate the bilingual statute site from revision files",
		Long: `lagstiftning loads Swedish statute revisions with English translations
from YAML files named after their SFS code (for example 2024:12.yaml) and
renders a static site with one page per revision and per section.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return errors.New("missing subcommand")
			}
			return fmt.Errorf("unknown subcommand %q", args[0])
		},
	}
	root.SetOut(stdout)

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "path to a YAML configuration file")
	pf.StringVar(&flags.source, "source", "", "directory holding the revision files")
	pf.StringVar(&flags.out, "out", "", "output directory for the generated site")
	pf.StringVar(&flags.basePath, "base-path", "", "path prefix for generated links, e.g. /las")
	pf.StringVar(&flags.baseURL, "base-url", "", "absolute site url used in the sitemap")
	pf.IntVar(&flags.workers, "workers", 0, "revisions rendered concurrently (0 uses the CPU count)")
	pf.StringVar(&flags.logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	pf.StringVar(&flags.logProvider, "log-provider", "", "logger provider (console or gologger)")
	pf.BoolVar(&flags.sitemap, "sitemap", true, "write sitemap.xml and robots.txt")

	root.AddCommand(
		buildCmd(flags),
		validateCmd(flags),
		sectionsCmd(flags),
		cleanCmd(flags),
		watchCmd(flags),
	)
	return root
}

func (f *globalFlags) options(cmd *cobra.Command) moduleOptions {
	opts := moduleOptions{
		ConfigPath:  f.configPath,
		SourceDir:   f.source,
		OutputDir:   f.out,
		BaseURL:     f.baseURL,
		LogLevel:    f.logLevel,
		LogProvider: f.logProvider,
	}
	changed := cmd.Flags().Changed
	if changed("base-path") {
		basePath := f.basePath
		opts.BasePath = &basePath
	}
	if changed("workers") {
		workers := f.workers
		opts.Workers = &workers
	}
	if changed("sitemap") {
		sitemap := f.sitemap
		opts.Sitemap = &sitemap
	}
	return opts
}

func loadResources(cmd *cobra.Command, flags *globalFlags) (*moduleResources, error) {
	resources, err := moduleBuilder(flags.options(cmd))
	if err != nil {
		return nil, err
	}
	if resources == nil {
		return nil, errors.New("module resources not configured")
	}
	return resources, nil
}

func buildCmd(flags *globalFlags) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "build [identifier...]",
		Short: "Render the site, or only the named revisions",
		RunE: func(cmd *cobra.Command, args []string) error {
			resources, err := loadResources(cmd, flags)
			if err != nil {
				return err
			}
			return executeBuild(cmd.Context(), resources.handlers, args, dryRun)
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "render pages without writing them")
	return cmd
}

func executeBuild(ctx context.Context, handlers handlerSet, identifiers []string, dryRun bool) error {
	if handlers.build == nil {
		return errors.New("build handler not configured")
	}
	return handlers.build.Execute(ctx, staticcmd.BuildSiteCommand{
		Identifiers:    identifiers,
		DryRun:         dryRun,
		ResultCallback: logBuildResult,
	})
}

func logBuildResult(envelope staticcmd.ResultEnvelope) {
	operation, _ := envelope.Metadata["operation"].(string)
	if operation == "" {
		operation = "build"
	}
	result := envelope.Result
	if result == nil {
		log.Printf("module=lagstiftning operation=%s", operation)
		return
	}
	log.Printf("module=lagstiftning operation=%s summary revisions=%d built=%d skipped=%d failures=%d dry_run=%t duration=%s",
		operation, len(result.Revisions), result.PagesBuilt, result.PagesSkipped, len(result.Failures), result.DryRun, result.Duration)
	for _, failure := range result.Failures {
		log.Printf("module=lagstiftning operation=%s revision=%s kind=%s field=%s error=%q",
			operation, failure.Identifier, failure.Kind, failure.Field, failure.Err)
	}
}

func validateCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [identifier...]",
		Short: "Load and check revisions without rendering the site",
		RunE: func(cmd *cobra.Command, args []string) error {
			resources, err := loadResources(cmd, flags)
			if err != nil {
				return err
			}
			if resources.handlers.validate == nil {
				return errors.New("validate handler not configured")
			}
			out := cmd.OutOrStdout()
			return resources.handlers.validate.Execute(cmd.Context(), staticcmd.ValidateRevisionsCommand{
				Identifiers: args,
				ReportCallback: func(report staticcmd.ValidationReport) {
					printReport(out, report)
				},
			})
		},
	}
}

func printReport(out io.Writer, report staticcmd.ValidationReport) {
	for _, check := range report.Revisions {
		if check.Err != nil {
			field := check.Field
			if field == "" {
				field = "-"
			}
			fmt.Fprintf(out, "FAIL %s kind=%s field=%s: %v\n", check.Identifier, check.Kind, field, check.Err)
			continue
		}
		fmt.Fprintf(out, "ok   %s elements=%d sections=%d\n", check.Identifier, check.Elements, check.Sections)
	}
	log.Printf("module=lagstiftning operation=validate revisions=%d failed=%d duration=%s",
		len(report.Revisions), len(report.Failed()), report.Duration)
}

func sectionsCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "sections <identifier>",
		Short: "List the section pages of a revision",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resources, err := loadResources(cmd, flags)
			if err != nil {
				return err
			}
			if resources.sections == nil {
				return errors.New("sections loader not configured")
			}
			rev, sections, err := resources.sections(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s\n", rev.Identifier, rev.Name.EN)
			for _, section := range sections {
				fmt.Fprintf(out, "%s\t%s\t%s\n", section.Slug(), section.Title, strings.TrimSpace(section.Description))
			}
			return nil
		},
	}
}

func cleanCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove the generated site",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resources, err := loadResources(cmd, flags)
			if err != nil {
				return err
			}
			if resources.handlers.clean == nil {
				return errors.New("clean handler not configured")
			}
			if err := resources.handlers.clean.Execute(cmd.Context(), staticcmd.CleanSiteCommand{}); err != nil {
				return err
			}
			log.Printf("module=lagstiftning operation=clean")
			return nil
		},
	}
}

func watchCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Build the site, then rebuild revisions as their files change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resources, err := loadResources(cmd, flags)
			if err != nil {
				return err
			}
			if resources.watch == nil {
				return errors.New("watcher not configured")
			}
			if err := executeBuild(cmd.Context(), resources.handlers, nil, false); err != nil {
				log.Printf("module=lagstiftning operation=watch initial build failed: %v", err)
			}
			log.Printf("module=lagstiftning operation=watch")
			return resources.watch(cmd.Context())
		},
	}
}
