package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/jessevdk/go-flags"

	"github.com/run-bigpig/nexus/internal/config"
	"github.com/run-bigpig/nexus/internal/llm"
	"github.com/run-bigpig/nexus/internal/logger"
	"github.com/run-bigpig/nexus/internal/models"
	"github.com/run-bigpig/nexus/internal/persona"
	"github.com/run-bigpig/nexus/internal/pkg/paths"
	"github.com/run-bigpig/nexus/internal/realtime"
	"github.com/run-bigpig/nexus/internal/session"
)

var log = logger.New("Main")

// options 命令行参数，由 go-flags 解析
type options struct {
	Config   string   `short:"c" long:"config" description:"configuration YAML path"`
	Personas string   `long:"personas" description:"persona catalog YAML/JSON path (defaults to the built-in catalog)"`
	Idea     string   `short:"i" long:"idea" description:"startup idea JSON file, '-' for stdin" required:"true"`
	Agents   []string `short:"a" long:"agent" description:"expert persona id, repeatable; omit to auto-select by idea"`
	Mode     string   `short:"m" long:"mode" description:"round execution mode" choice:"parallel" choice:"sequential" default:"parallel"`
	Rounds   int      `short:"r" long:"rounds" description:"number of feedback rounds" default:"1"`
	Inputs   []string `long:"input" description:"additional user input for each round, repeatable"`
	Summary  bool     `short:"s" long:"summary" description:"print the session summary after the final round"`
	Verbose  bool     `short:"v" long:"verbose" description:"print per-agent progress events"`
}

func main() {
	var opts options
	parser := flags.NewParser(&opts, flags.HelpFlag|flags.PassDoubleDash)
	if _, err := parser.Parse(); err != nil {
		if flags.WroteHelp(err) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := run(opts); err != nil {
		log.Error("%v", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	configPath := opts.Config
	if configPath == "" {
		configPath = paths.DefaultConfigFile()
	}
	settings, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.Verbose {
		settings.LogLevel = "DEBUG"
	}
	logger.SetGlobalLevel(logger.ParseLevel(settings.LogLevel))

	idea, err := loadIdea(opts.Idea)
	if err != nil {
		return fmt.Errorf("load idea: %w", err)
	}

	catalog, err := loadCatalog(opts.Personas)
	if err != nil {
		return fmt.Errorf("load personas: %w", err)
	}

	provider := llm.NewOpenAIProvider(settings.OpenAIAPIKey, settings.OpenAIBaseURL, settings.OpenAIModel)

	hub := realtime.NewHub()
	svc := session.NewService(settings, catalog, provider, session.WithPublisher(hub))

	info, err := svc.CreateSession(session.CreateRequest{
		Idea:           idea,
		SelectedAgents: opts.Agents,
		AutoSelect:     len(opts.Agents) == 0,
	})
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	log.Info("session %s: %d experts on %q", info.SessionID, len(info.SelectedAgents), idea.Title)

	events, cancelSub := hub.Subscribe(info.SessionID)
	defer cancelSub()
	go printEvents(events, opts.Verbose)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	for i := 0; i < opts.Rounds; i++ {
		var userInput string
		if i < len(opts.Inputs) {
			userInput = opts.Inputs[i]
		}
		round, err := svc.StartRound(ctx, info.SessionID, userInput, models.ExecutionMode(opts.Mode))
		if err != nil {
			return fmt.Errorf("round %d: %w", i+1, err)
		}
		if err := enc.Encode(round); err != nil {
			return err
		}
	}

	if opts.Summary {
		summary, err := svc.GetSummary(info.SessionID)
		if err != nil {
			return err
		}
		if err := enc.Encode(summary); err != nil {
			return err
		}
	}
	return nil
}

func loadIdea(path string) (models.StartupIdea, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return models.StartupIdea{}, err
	}

	var idea models.StartupIdea
	if err := json.Unmarshal(data, &idea); err != nil {
		return models.StartupIdea{}, err
	}
	return idea, nil
}

func loadCatalog(path string) (persona.Catalog, error) {
	if path == "" {
		return persona.Default()
	}
	return persona.LoadFile(path)
}

func printEvents(events <-chan realtime.Event, verbose bool) {
	for event := range events {
		switch event.Type {
		case realtime.EventAgentStart:
			if verbose {
				log.Debug("%s is analyzing...", event.AgentName)
			}
		case realtime.EventAgentComplete:
			if verbose && event.Response != nil {
				log.Debug("%s done, sentiment %s", event.AgentName, event.Response.Sentiment)
			}
		case realtime.EventError:
			log.Warn("round %d: %s", event.Round, event.Message)
		}
	}
}
