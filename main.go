package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"cloud.google.com/go/datastore/apiv1/datastorepb"
	"github.com/alecthomas/kong"
	"google.golang.org/protobuf/proto"

	"github.com/web3-inreach/jentity/internal/config"
	"github.com/web3-inreach/jentity/internal/converter"
	"github.com/web3-inreach/jentity/internal/errors"
	"github.com/web3-inreach/jentity/internal/formatter"
	"github.com/web3-inreach/jentity/internal/keys"
	"github.com/web3-inreach/jentity/internal/logger"
	"github.com/web3-inreach/jentity/internal/models"
	"github.com/web3-inreach/jentity/internal/mutation"
	"github.com/web3-inreach/jentity/internal/parser"
)

// CLI defines the command-line interface
var CLI struct {
	Input              string   `help:"Path to input JSON file. If not specified, reads from stdin." short:"i" type:"path"`
	Output             string   `help:"Path to output file. If not specified, writes to stdout." short:"o" type:"path"`
	Config             string   `help:"Path to config file. If not specified, searches for .jentity.yml up the directory tree." short:"c" type:"path"`
	Kind               string   `help:"Entity kind. Defaults to the input file name in CamelCase."`
	Namespace          string   `help:"Datastore namespace for entity keys."`
	Project            string   `help:"Project ID for entity keys and commit requests."`
	Database           string   `help:"Database ID for entity keys and commit requests."`
	KeyProperty        string   `help:"Property whose value becomes the key name (string) or id (integer)."`
	Format             string   `help:"Output format: json, text or yaml." short:"f"`
	Commit             bool     `help:"Wrap the entities in a commit request."`
	Operation          string   `help:"Commit operation: upsert, insert or update."`
	EmptyArrays        string   `help:"Empty array policy: empty or error."`
	StrictArrays       bool     `help:"Reject arrays whose scalar elements differ in type."`
	NoDetectTimestamps bool     `help:"Keep ISO 8601 strings as text instead of timestamps."`
	LooseTimestamps    bool     `help:"Also read \"2006-01-02\" and \"2006-01-02 15:04:05\" strings as timestamps."`
	Exclude            []string `help:"Regex of property names to exclude from indexes (repeatable)."`
	Debug              bool     `help:"Enable debug logging." short:"d"`
	LogLevel           string   `help:"Log level: trace, debug, info, warn or error."`
	Version            bool     `help:"Show version information." short:"v"`
	Interactive        bool     `help:"Run in interactive mode, allowing direct JSON input with Ctrl+D to process." short:"I"`
}

// Context holds the runtime context
type Context struct {
	Debug  bool
	Config *config.Config
}

// Version information
const (
	Version = "0.1.0"
)

func main() {
	parser := kong.Must(&CLI,
		kong.Name("jentity"),
		kong.Description("A tool to convert JSON documents to Datastore entities"),
		kong.UsageOnError(),
	)

	// No arguments means interactive mode
	if len(os.Args) == 1 {
		CLI.Interactive = true
	}

	if _, err := parser.Parse(os.Args[1:]); err != nil {
		os.Exit(1)
	}

	if CLI.Version {
		fmt.Printf("jentity version %s\n", Version)
		return
	}

	cfg, configPath, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
		os.Exit(1)
	}

	if err := logger.Setup(cfg.Dev.LogLevel, cfg.Dev.Debug); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(errors.NewConfigError("invalid log level", err)))
		os.Exit(1)
	}
	if configPath != "" {
		logger.Debug("loaded config", "path", configPath)
	}

	if err := run(&Context{Debug: cfg.Dev.Debug, Config: cfg}); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
		fmt.Fprintf(os.Stderr, "\nFor help, run: jentity --help\n")
		os.Exit(1)
	}
}

// loadConfig merges the config file, if any, with CLI flags.
// It also returns the path of the file used, empty when there is none.
func loadConfig() (*config.Config, string, error) {
	configPath := CLI.Config
	if configPath == "" {
		configPath = config.FindConfigFile()
	}

	cfg, err := config.LoadConfigWithCLI(configPath, config.Overrides{
		Project:            CLI.Project,
		Database:           CLI.Database,
		Namespace:          CLI.Namespace,
		Kind:               CLI.Kind,
		KeyProperty:        CLI.KeyProperty,
		Format:             CLI.Format,
		Operation:          CLI.Operation,
		EmptyArrays:        CLI.EmptyArrays,
		Exclude:            CLI.Exclude,
		Commit:             CLI.Commit,
		StrictArrays:       CLI.StrictArrays,
		NoDetectTimestamps: CLI.NoDetectTimestamps,
		LooseTimestamps:    CLI.LooseTimestamps,
		Debug:              CLI.Debug,
		LogLevel:           CLI.LogLevel,
	})
	if err != nil {
		return nil, "", errors.NewConfigError("failed to load configuration", err)
	}
	return cfg, configPath, nil
}

// run executes the main program logic
func run(ctx *Context) error {
	cfg := ctx.Config
	if cfg == nil {
		cfg = config.NewConfig()
	}

	// 1. Parse JSON input
	ir, err := parseInput(parser.Options{
		DetectTimestamps: cfg.Types.DetectTimestamps,
		LooseTimestamps:  cfg.Types.LooseTimestamps,
	})
	if err != nil {
		return err
	}
	logger.Debug("parsed input", "root_is_array", ir.RootIsArray)

	// 2. Convert to entities
	conv, err := converter.NewConverterWithConfig(cfg)
	if err != nil {
		return err
	}
	entities, err := conv.ConvertAll(ir)
	if err != nil {
		return err
	}
	logger.Debug("converted entities", "count", len(entities))

	// 3. Assign keys
	builder := keys.NewBuilder(cfg, CLI.Input)
	if err := builder.Assign(entities); err != nil {
		return err
	}
	logger.Debug("assigned keys", "kind", builder.Kind())

	// 4. Render
	messages := make([]proto.Message, 0, len(entities))
	if cfg.Output.Commit {
		req, err := mutation.Build(cfg.Key.Project, cfg.Key.Database, entities, cfg.Output.Operation)
		if err != nil {
			return errors.NewConversionError("failed to build commit request", err)
		}
		messages = append(messages, req)
	} else {
		messages = append(messages, entityMessages(entities)...)
	}

	out, err := formatter.NewFormatter(cfg.Output.Format).Format(messages...)
	if err != nil {
		return errors.NewOutputError("failed to format output", err)
	}

	// 5. Output the result
	return writeOutput(out)
}

func entityMessages(entities []*datastorepb.Entity) []proto.Message {
	messages := make([]proto.Message, len(entities))
	for i, e := range entities {
		messages[i] = e
	}
	return messages
}

// parseInput reads JSON from file or stdin
func parseInput(opts parser.Options) (models.IntermediateRepresentation, error) {
	if CLI.Input != "" {
		return parser.ParseFileWithOptions(CLI.Input, opts)
	}

	stdinInfo, err := os.Stdin.Stat()
	if err != nil {
		return models.IntermediateRepresentation{}, errors.NewInputError("failed to access stdin", err)
	}

	if (stdinInfo.Mode() & os.ModeCharDevice) != 0 {
		// Terminal is interactive (not piped)
		if CLI.Interactive {
			return readInteractiveInput(opts)
		}
		return models.IntermediateRepresentation{}, errors.NewInputError("no input provided", errors.ErrNoInput)
	}

	jsonData, err := io.ReadAll(os.Stdin)
	if err != nil {
		return models.IntermediateRepresentation{}, errors.NewInputError("failed to read from stdin", err)
	}

	if len(jsonData) == 0 {
		return models.IntermediateRepresentation{}, errors.NewInputError("empty input received from stdin", errors.ErrEmptyInput)
	}

	return parser.ParseStringWithOptions(string(jsonData), opts)
}

// writeOutput writes the rendered output to file or stdout
func writeOutput(out string) error {
	if CLI.Output != "" {
		err := os.WriteFile(CLI.Output, []byte(out), 0644)
		if err != nil {
			return errors.NewOutputError(fmt.Sprintf("failed to write to file '%s'", CLI.Output), err)
		}
		logger.Info("output written", "path", CLI.Output)
		return nil
	}

	_, err := fmt.Println(strings.TrimRight(out, "\n"))
	if err != nil {
		return errors.NewOutputError("failed to write to stdout", err)
	}
	return nil
}

// readInteractiveInput lets users paste JSON and finish with Ctrl+D (EOF)
func readInteractiveInput(opts parser.Options) (models.IntermediateRepresentation, error) {
	fmt.Fprintln(os.Stderr, "jentity Interactive Mode")
	fmt.Fprintln(os.Stderr, "Paste your JSON below and press Ctrl+D (or Ctrl+Z on Windows) when done:")

	reader := bufio.NewReader(os.Stdin)
	var jsonBuilder strings.Builder

	for {
		line, err := reader.ReadString('\n')
		if err == io.EOF {
			jsonBuilder.WriteString(line)
			break
		}
		if err != nil {
			return models.IntermediateRepresentation{}, errors.NewInputError("error reading input", err)
		}
		jsonBuilder.WriteString(line)
	}

	jsonData := jsonBuilder.String()
	if len(jsonData) == 0 {
		return models.IntermediateRepresentation{}, errors.NewInputError("empty input received", errors.ErrEmptyInput)
	}

	fmt.Fprintln(os.Stderr, "\nConverting JSON...")
	return parser.ParseStringWithOptions(jsonData, opts)
}
