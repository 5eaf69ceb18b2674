package main

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	flag "github.com/spf13/pflag"
)

const envPrefix = "QUIZ_"

// Modes select what the CLI does; the first positional argument picks one.
const (
	modeQuiz     = "quiz"
	modeAdd      = "add"
	modeProgress = "progress"
)

type options struct {
	Mode      string
	APIURL    string
	Topic     string
	WrongOnly bool
	ChartPath string
	Timeout   time.Duration
	Verbose   bool
}

// loadOptions layers flag defaults, an optional YAML file, QUIZ_* env vars
// and explicitly set flags, later sources winning. The mode comes from the
// first positional argument and defaults to quiz.
func loadOptions(args []string) (options, error) {
	f := flag.NewFlagSet("quiz", flag.ContinueOnError)
	f.String("config", "quiz.yaml", "path to a YAML config file")
	f.String("api-url", "http://localhost:8080", "base URL of the flashcard API")
	f.String("topic", "", "only quiz flashcards with this topic")
	f.Bool("wrong-only", false, "only quiz flashcards answered wrong before")
	f.String("chart", "", "write an accuracy chart PNG here when the quiz ends")
	f.Duration("timeout", 10*time.Second, "per-request timeout")
	f.BoolP("verbose", "v", false, "log debug output")
	if err := f.Parse(args); err != nil {
		return options{}, err
	}

	k := koanf.New(".")

	cfgPath, _ := f.GetString("config")
	if cfgPath != "" {
		if err := k.Load(file.Provider(cfgPath), yaml.Parser()); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return options{}, fmt.Errorf("load %s: %w", cfgPath, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return options{}, fmt.Errorf("load env: %w", err)
	}

	if err := k.Load(posflag.Provider(f, ".", k), nil); err != nil {
		return options{}, fmt.Errorf("load flags: %w", err)
	}

	opts := options{
		Mode:      modeQuiz,
		APIURL:    strings.TrimRight(k.String("api-url"), "/"),
		Topic:     k.String("topic"),
		WrongOnly: k.Bool("wrong-only"),
		ChartPath: k.String("chart"),
		Timeout:   k.Duration("timeout"),
		Verbose:   k.Bool("verbose"),
	}
	if f.NArg() > 0 {
		opts.Mode = f.Arg(0)
	}
	switch opts.Mode {
	case modeQuiz, modeAdd, modeProgress:
	default:
		return options{}, fmt.Errorf("unknown mode %q (want quiz, add or progress)", opts.Mode)
	}
	if opts.APIURL == "" {
		return options{}, errors.New("api-url must not be empty")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	return opts, nil
}

// envKey maps QUIZ_API_URL to api-url.
func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "_", "-")
}
