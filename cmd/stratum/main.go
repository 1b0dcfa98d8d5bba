// Command stratum exercises the toolkit against AWS Bedrock: listing
// foundation models, legacy text generation, embedding similarity, and a
// tool-calling round trip.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/quarryhq/stratum/pkg/agents"
	"github.com/quarryhq/stratum/pkg/agents/roundtrip"
	"github.com/quarryhq/stratum/pkg/embeddings"
	"github.com/quarryhq/stratum/pkg/engine"
	"github.com/quarryhq/stratum/pkg/providers/bedrock"
	"github.com/rs/zerolog"
)

func main() {
	// Values in .env (AWS credentials, API keys) become visible to the
	// AWS SDK chain and to ${VAR} expansion in config files.
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "models":
		err = runModels(os.Args[2:])
	case "generate":
		err = runGenerate(os.Args[2:])
	case "ask":
		err = runAsk(os.Args[2:])
	case "embed":
		err = runEmbed(os.Args[2:])
	case "-h", "--help", "help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprint(os.Stderr, `Usage: stratum <command> [flags]

Commands:
  models    List the foundation models available to the account
  generate  Generate text with a legacy prompt/completion model
  ask       Answer a question, letting the model call local tools
  embed     Embed texts and rank them by similarity to a query

Run "stratum <command> -h" for command flags.
`)
}

// commonFlags registers the flags every subcommand shares.
type commonFlags struct {
	region   string
	logLevel string
	pretty   bool
}

func (cf *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&cf.region, "region", "us-west-2", "AWS region")
	fs.StringVar(&cf.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	fs.BoolVar(&cf.pretty, "pretty", false, "human-readable console logs instead of JSON")
}

func (cf *commonFlags) logger() zerolog.Logger {
	level, err := zerolog.ParseLevel(cf.logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if cf.pretty {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		logger = zerolog.New(os.Stderr)
	}

	return logger.Level(level).With().Timestamp().Logger()
}

func runModels(args []string) error {
	fs := flag.NewFlagSet("models", flag.ExitOnError)
	var cf commonFlags
	cf.register(fs)
	_ = fs.Parse(args)

	ctx := context.Background()

	catalog, err := bedrock.NewCatalog(ctx, cf.region)
	if err != nil {
		return err
	}

	models, err := catalog.ListModels(ctx)
	if err != nil {
		return err
	}

	for _, m := range models {
		fmt.Printf("%-60s %-20s %s\n", m.ID, m.Provider, m.Name)
	}

	return nil
}

func runGenerate(args []string) error {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	var cf commonFlags
	cf.register(fs)
	model := fs.String("model", "", "model id (default: "+bedrock.DefaultCompletionModel+")")
	maxTokens := fs.Int("max-tokens", 500, "maximum tokens to generate")
	_ = fs.Parse(args)

	prompt := strings.Join(fs.Args(), " ")
	if prompt == "" {
		return fmt.Errorf("generate: a prompt is required")
	}

	ctx := context.Background()

	tc, err := bedrock.NewTextCompleter(ctx, cf.region, *model)
	if err != nil {
		return err
	}
	tc.MaxTokens = *maxTokens

	text, err := tc.Generate(ctx, prompt)
	if err != nil {
		return err
	}

	fmt.Println(strings.TrimSpace(text))

	return nil
}

func runAsk(args []string) error {
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	var cf commonFlags
	cf.register(fs)
	configPath := fs.String("config", "", "engine config file; when empty a built-in demo agent is used")
	agentName := fs.String("agent", "", "agent to use (default: the config's entry agent)")
	model := fs.String("model", "", "model id for the built-in demo agent")
	_ = fs.Parse(args)

	question := strings.Join(fs.Args(), " ")
	if question == "" {
		return fmt.Errorf("ask: a question is required")
	}

	ctx := context.Background()
	log := cf.logger()

	o, cleanup, err := buildOrchestrator(ctx, cf, *configPath, *agentName, *model, log)
	if err != nil {
		return err
	}
	defer cleanup()

	answer, err := o.Run(ctx, question)
	if err != nil {
		return err
	}

	fmt.Println(answer)

	return nil
}

// buildOrchestrator assembles the round-trip orchestrator either from an
// engine config or, without one, from a Bedrock runtime plus the built-in
// demo directory toolbox.
func buildOrchestrator(ctx context.Context, cf commonFlags, configPath, agentName, model string, log zerolog.Logger) (*roundtrip.Orchestrator, func(), error) {
	if configPath == "" {
		rt, err := bedrock.NewRuntime(ctx, cf.region, model)
		if err != nil {
			return nil, nil, err
		}
		rt.Log = log

		o := roundtrip.New(agents.NewBase("demo", rt, nil, demoToolBox()))
		o.Log = log

		return o, func() {}, nil
	}

	cfg, err := engine.LoadConfig(configPath)
	if err != nil {
		return nil, nil, err
	}

	e, err := engine.New(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}
	e.RegisterToolBox("demo", demoToolBox())

	o, err := e.Orchestrator(agentName)
	if err != nil {
		_ = e.Close()
		return nil, nil, err
	}

	return o, func() { _ = e.Close() }, nil
}

func runEmbed(args []string) error {
	fs := flag.NewFlagSet("embed", flag.ExitOnError)
	var cf commonFlags
	cf.register(fs)
	model := fs.String("model", "", "embedding model id (default: "+bedrock.DefaultEmbeddingModel+")")
	query := fs.String("query", "", "query text to rank candidates against")
	_ = fs.Parse(args)

	candidates := fs.Args()
	if *query == "" || len(candidates) == 0 {
		return fmt.Errorf("embed: -query and at least one candidate text are required")
	}

	ctx := context.Background()

	embedder, err := bedrock.NewEmbedder(ctx, cf.region, *model)
	if err != nil {
		return err
	}

	queryVec, err := embedder.Embed(ctx, *query)
	if err != nil {
		return err
	}

	vecs := make([][]float64, len(candidates))
	for i, text := range candidates {
		vecs[i], err = embedder.Embed(ctx, text)
		if err != nil {
			return err
		}
	}

	for _, i := range embeddings.Rank(queryVec, vecs...) {
		fmt.Printf("%.4f  %s\n", embeddings.Cosine(queryVec, vecs[i]), candidates[i])
	}

	return nil
}
