// cmd/recipescrapexter/main.go - Command line recipe importer
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"gopkg.in/yaml.v3"

	"github.com/valpere/RecipeScrapexter/internal/config"
	apperrors "github.com/valpere/RecipeScrapexter/internal/errors"
	"github.com/valpere/RecipeScrapexter/internal/output"
	"github.com/valpere/RecipeScrapexter/internal/utils"
	"github.com/valpere/RecipeScrapexter/pkg/api"
	"github.com/valpere/RecipeScrapexter/pkg/types"
)

// Version information (set by build flags)
var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

// Global error service instance
var errorService = apperrors.NewService()

var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
	stdin  io.Reader = os.Stdin
)

// flags that consume the following argument
var valueFlags = map[string]bool{
	"--config":     true,
	"-c":           true,
	"--output":     true,
	"-o":           true,
	"--format":     true,
	"-f":           true,
	"--source-url": true,
	"--servings":   true,
	"--type":       true,
}

// usageError is a malformed command line; it exits 1 with a usage hint.
type usageError struct {
	msg   string
	usage string
}

func (e *usageError) Error() string { return e.msg }

// options holds the flags shared by import and parse
type options struct {
	configFile string
	outputFile string
	format     string
	sourceURL  string
	servings   int
	store      bool
	json       bool
	verbose    bool
}

func parseOptions(args []string) (*options, error) {
	opts := &options{
		configFile: flagValue(args, "--config", "-c"),
		outputFile: flagValue(args, "--output", "-o"),
		format:     flagValue(args, "--format", "-f"),
		sourceURL:  flagValue(args, "--source-url"),
		store:      hasFlag(args, "--store"),
		json:       hasFlag(args, "--json"),
		verbose:    hasFlag(args, "-v", "--verbose"),
	}
	if raw := flagValue(args, "--servings"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return nil, &usageError{msg: fmt.Sprintf("invalid --servings value %q", raw), usage: "--servings <positive integer>"}
		}
		opts.servings = n
	}
	return opts, nil
}

// loadConfig loads the config file (or defaults) and applies command line overrides
func loadConfig(opts *options) (*config.Config, error) {
	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return nil, err
	}
	if opts.outputFile != "" {
		cfg.Output.File = opts.outputFile
	}
	if opts.format != "" {
		if _, ok := output.ParseFormat(opts.format); !ok {
			return nil, &apperrors.ConfigError{Err: fmt.Errorf("unsupported output format %q: use one of %s", opts.format, strings.Join(formatNames(), ", "))}
		}
		cfg.Output.Format = opts.format
	}
	return cfg, nil
}

func newLogger(cfg *config.Config, verbose bool) (utils.Logger, error) {
	level := cfg.Log.Level
	if verbose {
		level = "debug"
	}
	return utils.NewLogger(utils.LogConfig{Level: level, Development: cfg.Log.Development})
}

// runImport fetches every URL, optionally stores the recipes and writes them out
func runImport(args []string) error {
	urls := positional(args)
	if len(urls) == 0 {
		return &usageError{msg: "at least one URL is required", usage: "recipescrapexter import <url>... [options]"}
	}
	opts, err := parseOptions(args)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg, opts.verbose)
	if err != nil {
		return &apperrors.ConfigError{Err: err}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := api.NewClient(ctx, cfg, api.WithLogger(logger))
	if err != nil {
		return err
	}
	defer client.Close()

	if opts.store && !client.HasStore() {
		return &apperrors.ConfigError{Path: opts.configFile, Err: fmt.Errorf("--store requires storage.driver to be configured")}
	}

	results := client.ImportAll(ctx, urls)

	var firstErr error
	items := make([]api.BatchItem, 0, len(results))
	recipes := make([]*types.Recipe, 0, len(results))
	for _, res := range results {
		if res.Err == nil {
			res.Result.Recipe, res.Err = scale(res.Result.Recipe, opts.servings)
		}
		if res.Err == nil && opts.store {
			if _, err := client.Save(ctx, res.Result.Recipe); err != nil {
				res.Err = fmt.Errorf("failed to save recipe: %w", err)
			}
		}
		if res.Err != nil {
			if firstErr == nil {
				firstErr = res.Err
			}
			items = append(items, api.BatchItem{URL: res.URL, Response: api.Failure(res.Err)})
			if !opts.json && len(urls) > 1 {
				fmt.Fprintf(stderr, "✗ %s: %v\n", res.URL, res.Err)
			}
			continue
		}
		items = append(items, api.BatchItem{URL: res.URL, Response: api.Success(res.Result.Recipe)})
		recipes = append(recipes, res.Result.Recipe)
		if opts.verbose {
			fmt.Fprintf(stderr, "✓ %s: %q via %s in %s\n", res.URL, res.Result.Recipe.Title, res.Result.Strategy, res.Result.Duration)
		}
	}

	if opts.json {
		if len(urls) == 1 {
			if err := writeJSON(items[0].Response); err != nil {
				return err
			}
		} else if err := writeJSON(items); err != nil {
			return err
		}
		return quiet(firstErr)
	}

	if len(recipes) > 0 {
		if err := writeRecipes(cfg, recipes); err != nil {
			return err
		}
	}
	if cfg.Output.File != "" {
		fmt.Fprintf(stderr, "Imported %d of %d recipes. Results saved to %s\n", len(recipes), len(urls), cfg.Output.File)
	}
	if len(urls) > 1 {
		// failures were listed per URL; the first one sets the exit code
		return quiet(firstErr)
	}
	return firstErr
}

// runParse extracts a recipe from a local HTML file, or stdin for "-"
func runParse(args []string) error {
	files := positional(args)
	if len(files) != 1 {
		return &usageError{msg: "exactly one HTML file is required", usage: "recipescrapexter parse <file.html|-> [--source-url <url>] [options]"}
	}
	opts, err := parseOptions(args)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	html, err := readInput(files[0])
	if err != nil {
		return err
	}

	recipe, err := api.ParseHTML(html, opts.sourceURL)
	if err == nil {
		recipe, err = scale(recipe, opts.servings)
	}
	if opts.json {
		resp := api.Success(recipe)
		if err != nil {
			resp = api.Failure(err)
		}
		if werr := writeJSON(resp); werr != nil {
			return werr
		}
		return quiet(err)
	}
	if err != nil {
		return err
	}
	return writeRecipes(cfg, []*types.Recipe{recipe})
}

func readInput(name string) (string, error) {
	var (
		data []byte
		err  error
	)
	if name == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(name)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", name, err)
	}
	return string(data), nil
}

func scale(recipe *types.Recipe, servings int) (*types.Recipe, error) {
	if servings == 0 {
		return recipe, nil
	}
	return recipe.Scale(servings)
}

func writeRecipes(cfg *config.Config, recipes []*types.Recipe) error {
	manager, err := output.NewManager(&cfg.Output)
	if err != nil {
		return &apperrors.ConfigError{Err: err}
	}
	manager.SetStdout(stdout)
	return manager.Write(recipes)
}

func writeJSON(v interface{}) error {
	encoder := json.NewEncoder(stdout)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(v); err != nil {
		return &apperrors.OutputError{Target: "stdout", Err: err}
	}
	return nil
}

// quietError marks an error already reported on stdout
type quietError struct{ error }

func (e quietError) Unwrap() error { return e.error }

func quiet(err error) error {
	if err == nil {
		return nil
	}
	return quietError{err}
}

// validateConfig loads and validates a configuration file
func validateConfig(args []string) error {
	files := positional(args)
	if len(files) != 1 {
		return &usageError{msg: "config file required", usage: "recipescrapexter validate <config.yaml>"}
	}
	configFile := files[0]

	cfg, err := config.LoadFromFile(configFile)
	if err != nil {
		return err
	}

	result := config.ValidateConfig(cfg)
	for _, warning := range result.Warnings {
		fmt.Fprintf(stderr, "⚠ %s\n", warning)
	}

	if hasFlag(args, "-v", "--verbose") {
		fmt.Fprintf(stdout, "Configuration details:\n")
		fmt.Fprintf(stdout, "  Fetch timeout: %s (retries: %d)\n", cfg.Fetch.Timeout, cfg.Fetch.RetryAttempts)
		fmt.Fprintf(stdout, "  Browser: %t\n", cfg.Browser.Enabled)
		fmt.Fprintf(stdout, "  Cache: %t\n", cfg.Cache.Enabled)
		fmt.Fprintf(stdout, "  Storage driver: %s\n", valueOr(cfg.Storage.Driver, "none"))
		fmt.Fprintf(stdout, "  Output format: %s\n", cfg.Output.Format)
	}

	fmt.Fprintf(stdout, "✓ Configuration file '%s' is valid\n", configFile)
	return nil
}

// generateTemplate renders a configuration template as YAML
func generateTemplate(args []string) (string, error) {
	templateType := flagValue(args, "--type")
	if templateType == "" {
		templateType = "basic"
	}
	if !contains(config.TemplateTypes, templateType) {
		return "", &usageError{
			msg:   fmt.Sprintf("unknown template type '%s'", templateType),
			usage: "recipescrapexter template [--type " + strings.Join(config.TemplateTypes, "|") + "]",
		}
	}

	yamlData, err := yaml.Marshal(config.GenerateTemplate(templateType))
	if err != nil {
		return "", fmt.Errorf("failed to marshal template to YAML: %w", err)
	}
	return string(yamlData), nil
}

// hasFlag checks if any of the flags is present in args
func hasFlag(args []string, flags ...string) bool {
	for _, arg := range args {
		if contains(flags, arg) {
			return true
		}
	}
	return false
}

// flagValue returns the value after the first matching flag, also accepting --flag=value
func flagValue(args []string, flags ...string) string {
	for i, arg := range args {
		for _, flag := range flags {
			if arg == flag && i+1 < len(args) {
				return args[i+1]
			}
			if strings.HasPrefix(arg, flag+"=") {
				return strings.TrimPrefix(arg, flag+"=")
			}
		}
	}
	return ""
}

// positional returns the arguments that are neither flags nor flag values
func positional(args []string) []string {
	var out []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case valueFlags[arg]:
			i++
		case arg == "-":
			out = append(out, arg)
		case strings.HasPrefix(arg, "-"):
		default:
			out = append(out, arg)
		}
	}
	return out
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func formatNames() []string {
	formats := output.ValidOutputFormats()
	names := make([]string, len(formats))
	for i, f := range formats {
		names[i] = string(f)
	}
	return names
}

// run dispatches the command and returns the process exit code
func run(args []string) int {
	if len(args) < 1 {
		printUsage()
		return 1
	}

	command, rest := args[0], args[1:]
	errorService = apperrors.NewService().WithVerbose(hasFlag(rest, "-v", "--verbose"))

	var err error
	switch command {
	case "import":
		err = runImport(rest)

	case "parse":
		err = runParse(rest)

	case "validate":
		err = validateConfig(rest)

	case "template":
		var template string
		if template, err = generateTemplate(rest); err == nil {
			fmt.Fprint(stdout, template)
		}

	case "version", "--version", "-v":
		printVersion()

	case "help", "--help", "-h":
		printUsage()

	default:
		fmt.Fprintf(stderr, "Error: unknown command '%s'\n", command)
		printUsage()
		return 1
	}

	if err == nil {
		return apperrors.ExitOK
	}

	var ue *usageError
	if errors.As(err, &ue) {
		fmt.Fprintf(stderr, "Error: %s\n", ue.msg)
		fmt.Fprintf(stderr, "Usage: %s\n", ue.usage)
		return 1
	}
	var qe quietError
	if !errors.As(err, &qe) {
		fmt.Fprint(stderr, errorService.FormatErrorForCLI(err))
	}
	return errorService.GetExitCode(err)
}

// main function handles CLI arguments and routes to appropriate functions
func main() {
	os.Exit(run(os.Args[1:]))
}

// printUsage displays help information
func printUsage() {
	fmt.Fprintln(stdout, "RecipeScrapexter - Recipe Import Tool")
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Usage:")
	fmt.Fprintln(stdout, "  recipescrapexter import <url>... [options]      Import recipes from web pages")
	fmt.Fprintln(stdout, "  recipescrapexter parse <file.html|-> [options]  Extract a recipe from saved HTML")
	fmt.Fprintln(stdout, "  recipescrapexter validate <config.yaml>         Validate configuration file")
	fmt.Fprintln(stdout, "  recipescrapexter template [--type <type>]       Generate configuration template")
	fmt.Fprintln(stdout, "  recipescrapexter version                        Show version information")
	fmt.Fprintln(stdout, "  recipescrapexter help                           Show this help message")
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Options:")
	fmt.Fprintln(stdout, "  -c, --config <file>      Configuration file (defaults and RECIPE_* env otherwise)")
	fmt.Fprintln(stdout, "  -o, --output <file>      Write results to file instead of stdout")
	fmt.Fprintln(stdout, "  -f, --format <format>    json, yaml, csv or excel")
	fmt.Fprintln(stdout, "      --servings <n>       Scale ingredient quantities to n servings")
	fmt.Fprintln(stdout, "      --source-url <url>   Source URL recorded by parse")
	fmt.Fprintln(stdout, "      --store              Save imported recipes to the configured storage")
	fmt.Fprintln(stdout, "      --json               Print {success, data, error} envelopes")
	fmt.Fprintln(stdout, "  -v, --verbose            Enable verbose output")
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Template types:")
	fmt.Fprintln(stdout, "  basic       SQLite storage, JSON file output (default)")
	fmt.Fprintln(stdout, "  server      Redis cache and PostgreSQL storage for the API server")
	fmt.Fprintln(stdout, "  browser     Headless Chrome rendering for script-built pages")
}

// printVersion displays version information
func printVersion() {
	fmt.Fprintf(stdout, "RecipeScrapexter %s\n", version)
	fmt.Fprintf(stdout, "Build time: %s\n", buildTime)
	fmt.Fprintf(stdout, "Git commit: %s\n", gitCommit)
}
