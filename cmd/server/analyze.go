// cmd/server/analyze.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/Corphon/TrustLens/internal/app"
	"github.com/Corphon/TrustLens/internal/config"
	"github.com/Corphon/TrustLens/internal/models"
	"github.com/Corphon/TrustLens/internal/services"
	"github.com/Corphon/TrustLens/internal/utils"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"

	maxStdinBytes = 1 << 20
)

var analyzeCmd = &cli.Command{
	Name:      "analyze",
	Usage:     "Analyze text from the arguments or stdin and print the result",
	ArgsUsage: "[text...]",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "format",
			Usage: "Output format [json, yaml]",
			Value: formatJSON,
		},
		&cli.BoolFlag{
			Name:  "demo",
			Usage: "Use the randomized demo analyzer; no oracle is called",
		},
	},
	Action: runAnalyze,
}

func runAnalyze(ctx context.Context, cmd *cli.Command) error {
	format, err := parseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	content, err := readContent(cmd.Args().Slice(), os.Stdin)
	if err != nil {
		return err
	}

	cfg, err := config.InitConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// stdout carries the result; diagnostics go to stderr
	utils.GetLogger().Enable(false)
	logger := utils.NewLogger(os.Stderr, utils.WARNING)

	analyzer, err := newAnalyzer(cfg, cmd.Bool("demo"), logger)
	if err != nil {
		return err
	}

	result, err := analyzer.Analyze(ctx, models.AnalysisRequest{Content: content})
	if err != nil {
		return err
	}
	return writeResult(os.Stdout, result, format)
}

func newAnalyzer(cfg *config.AppConfig, demo bool, logger *utils.Logger) (services.Analyzer, error) {
	if demo {
		return services.NewDemoAnalysisService(nil, cfg.MaxContentLength), nil
	}
	built, err := app.Build(cfg, logger, nil)
	if err != nil {
		return nil, err
	}
	return built.Analyzer, nil
}

func parseFormat(f string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(f)) {
	case "", formatJSON:
		return formatJSON, nil
	case formatYAML, "yml":
		return formatYAML, nil
	default:
		return "", fmt.Errorf("unsupported format %q (want json or yaml)", f)
	}
}

// readContent joins args, or reads stdin when there are none
func readContent(args []string, stdin io.Reader) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}

	data, err := io.ReadAll(io.LimitReader(stdin, maxStdinBytes))
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

// writeResult prints v as indented JSON, or as block-style YAML that keeps
// the JSON field names.
func writeResult(w io.Writer, v interface{}, format string) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

	if format == formatJSON {
		_, err = fmt.Fprintln(w, string(data))
		return err
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return fmt.Errorf("convert result: %w", err)
	}
	resetStyle(&node)

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return enc.Close()
}

// resetStyle drops the flow and quoting styles inherited from JSON
func resetStyle(n *yaml.Node) {
	n.Style = 0
	for _, child := range n.Content {
		resetStyle(child)
	}
}
