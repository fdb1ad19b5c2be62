package main

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/stellar/stellar-quorum-analyzer/analyzer"
	"github.com/stellar/stellar-quorum-analyzer/fbas"
)

const (
	inputFileKey   = "input"
	xdrNodesKey    = "xdr-nodes"
	xdrQSetsKey    = "xdr-qsets"
	maxDurationKey = "max-duration"
	maxClausesKey  = "max-clauses"
	backendKey     = "backend"
	jsonOutputKey  = "json"
)

func addFlags(flags *pflag.FlagSet) {
	flags.String(inputFileKey, "", "path to a quorum-set JSON file (regular or stellarbeat schema)")
	flags.String(xdrNodesKey, "", "path to a file of base64 XDR-encoded NodeID entries, one per line")
	flags.String(xdrQSetsKey, "", "path to a file of base64 XDR-encoded ScpQuorumSet entries, one per line, aligned with "+xdrNodesKey)
	flags.Duration(maxDurationKey, 0, "wall-clock budget for the analysis (0 means unlimited)")
	flags.Int(maxClausesKey, 0, "ceiling on the number of CNF clauses emitted (0 means unlimited)")
	flags.String(backendKey, "gini", "SAT backend to use: gini or gophersat")
	flags.Bool(jsonOutputKey, false, "emit the verdict as machine-readable JSON instead of formatted text")
}

type config struct {
	inputFile   string
	xdrNodes    string
	xdrQSets    string
	maxDuration time.Duration
	maxClauses  int
	backend     analyzer.Backend
	jsonOutput  bool
}

func parseFlags(flags *pflag.FlagSet) (*config, error) {
	inputFile, err := flags.GetString(inputFileKey)
	if err != nil {
		return nil, err
	}
	xdrNodes, err := flags.GetString(xdrNodesKey)
	if err != nil {
		return nil, err
	}
	xdrQSets, err := flags.GetString(xdrQSetsKey)
	if err != nil {
		return nil, err
	}
	maxDuration, err := flags.GetDuration(maxDurationKey)
	if err != nil {
		return nil, err
	}
	maxClauses, err := flags.GetInt(maxClausesKey)
	if err != nil {
		return nil, err
	}
	backendStr, err := flags.GetString(backendKey)
	if err != nil {
		return nil, err
	}
	jsonOutput, err := flags.GetBool(jsonOutputKey)
	if err != nil {
		return nil, err
	}

	backend := analyzer.Gini
	if backendStr == "gophersat" {
		backend = analyzer.Gophersat
	}

	return &config{
		inputFile:   inputFile,
		xdrNodes:    xdrNodes,
		xdrQSets:    xdrQSets,
		maxDuration: maxDuration,
		maxClauses:  maxClauses,
		backend:     backend,
		jsonOutput:  jsonOutput,
	}, nil
}

func newRootCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "quorum-analyzer",
		Short: "Checks an FBAS for the quorum intersection property",
		RunE:  run,
	}
	addFlags(c.Flags())
	return c
}

func run(c *cobra.Command, _ []string) error {
	cfg, err := parseFlags(c.Flags())
	if err != nil {
		return err
	}

	log, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	g, err := buildGraph(cfg, log)
	if err != nil {
		return err
	}

	a := analyzer.New(cfg.backend, log)
	verdict, err := a.Analyze(c.Context(), g, analyzer.Limits{
		MaxDuration: cfg.maxDuration,
		MaxClauses:  cfg.maxClauses,
	})
	if err != nil {
		return err
	}

	return printVerdict(verdict, cfg.jsonOutput)
}

func buildGraph(cfg *config, log *zap.Logger) (*fbas.Graph, error) {
	switch {
	case cfg.inputFile != "":
		f, err := os.Open(cfg.inputFile)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return fbas.FromJSON(f, log)
	case cfg.xdrNodes != "" && cfg.xdrQSets != "":
		nodes, err := readBase64Lines(cfg.xdrNodes)
		if err != nil {
			return nil, err
		}
		qsets, err := readBase64Lines(cfg.xdrQSets)
		if err != nil {
			return nil, err
		}
		return fbas.FromXDR(nodes, qsets, log)
	default:
		return nil, fbas.Newf(fbas.InputParse, "one of --%s or --%s/--%s is required", inputFileKey, xdrNodesKey, xdrQSetsKey)
	}
}

func readBase64Lines(path string) ([][]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var lines [][]byte
	start := 0
	for i := 0; i <= len(raw); i++ {
		if i == len(raw) || raw[i] == '\n' {
			line := raw[start:i]
			start = i + 1
			if len(line) == 0 {
				continue
			}
			decoded, err := base64.StdEncoding.DecodeString(string(line))
			if err != nil {
				return nil, fbas.Wrap(fbas.InputParse, err, "invalid base64 in %s", path)
			}
			lines = append(lines, decoded)
		}
	}
	return lines, nil
}

func printVerdict(v analyzer.Verdict, asJSON bool) error {
	if asJSON {
		return json.NewEncoder(os.Stdout).Encode(v)
	}

	switch v.Kind {
	case analyzer.Intersects:
		fmt.Println("Intersects: every pair of quorums shares a validator")
	case analyzer.Disjoint:
		fmt.Println("Disjoint: found two quorums with no validator in common")
		fmt.Printf("  Quorum A: %v\n", v.QuorumA)
		fmt.Printf("  Quorum B: %v\n", v.QuorumB)
	}
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
