package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/edvin/rediscloud-tools/internal/config"
	"github.com/edvin/rediscloud-tools/internal/logging"
	"github.com/edvin/rediscloud-tools/internal/mcpserver"
	"github.com/edvin/rediscloud-tools/internal/tools"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "tools":
		fs := flag.NewFlagSet("tools", flag.ExitOnError)
		format := fs.String("format", "schema", "Output format: schema or openai")
		fs.Parse(os.Args[2:])

		if err := listTools(*format); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "call":
		fs := flag.NewFlagSet("call", flag.ExitOnError)
		args := fs.String("args", "", "Tool arguments as a JSON object")
		configPath := fs.String("config", "", "Path to rediscloud-mcp.yaml (optional, supplies instance defaults)")
		timeout := fs.Duration("timeout", 60*time.Second, "Overall timeout for the call")
		fs.Parse(os.Args[2:])

		if fs.NArg() < 1 {
			fmt.Fprintln(os.Stderr, "Usage: rediscloudctl call [-args JSON] [-config FILE] <tool-name>")
			os.Exit(1)
		}

		if err := callTool(fs.Arg(0), *args, *configPath, *timeout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	default:
		printUsage()
		os.Exit(1)
	}
}

func listTools(format string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := logging.NewLogger(cfg, "rediscloudctl")
	provider, err := tools.New(cfg, tools.Instance{}, logger)
	if err != nil {
		return err
	}

	var out any
	switch format {
	case "openai":
		out = provider.FunctionDefinitions()
	case "schema":
		type toolInfo struct {
			Name        string          `json:"name"`
			Description string          `json:"description"`
			Capability  string          `json:"capability"`
			Parameters  json.RawMessage `json:"parameters"`
		}
		var infos []toolInfo
		for _, d := range provider.Definitions() {
			infos = append(infos, toolInfo{
				Name:        d.Name,
				Description: d.Description,
				Capability:  d.Capability,
				Parameters:  d.Schema(),
			})
		}
		out = infos
	default:
		return fmt.Errorf("unknown format %q (want schema or openai)", format)
	}

	return printJSON(out)
}

func callTool(name, args, configPath string, timeout time.Duration) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger := logging.NewLogger(cfg, "rediscloudctl")

	instance := tools.Instance{}
	if configPath != "" {
		mcpCfg, err := mcpserver.LoadConfig(configPath)
		if err != nil {
			return err
		}
		instance = mcpCfg.Instance
	}

	provider, err := tools.New(cfg, instance, logger)
	if err != nil {
		return err
	}
	defer provider.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	result, err := provider.Execute(ctx, name, json.RawMessage(args))
	if err != nil {
		return err
	}
	return printJSON(result)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage: rediscloudctl <command> [options]

Commands:
  tools              List available tool definitions
    -format          Output format: schema (default) or openai

  call <tool-name>   Invoke a tool once and print the JSON result
    -args            Tool arguments as a JSON object
    -config          Path to rediscloud-mcp.yaml with instance defaults
    -timeout         Overall timeout (default 60s)`)
}
