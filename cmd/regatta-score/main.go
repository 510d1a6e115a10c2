// Command regatta-score scores regatta sheets offline.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/okian/regatta/internal/domain/scoring"
	"github.com/okian/regatta/internal/domain/types"
	"github.com/okian/regatta/internal/sheet"
)

const (
	inputFlag    = "input"
	outputFlag   = "output"
	formatFlag   = "format"
	tieBreakFlag = "tie-break"
	stdioName    = "-"

	formatTable = "table"
	formatYAML  = "yaml"
	formatJSON  = "json"
)

// Exit codes.
const (
	exitInput  = 2
	exitEncode = 3
)

var version = "v0.1.0-dev"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "regatta-score",
		Usage:   "Score a regatta sheet with the low-point system",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  tieBreakFlag,
				Usage: "How equal totals are ordered: sail_number or none",
				Value: string(scoring.TieBreakSailNumber),
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "score",
				Usage: "Read a YAML sheet and print its scoreboard",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     inputFlag,
						Aliases:  []string{"i"},
						Usage:    "Path to the YAML sheet or \"-\" for stdin",
						Required: true,
					},
					&cli.StringFlag{
						Name:    outputFlag,
						Aliases: []string{"o"},
						Usage:   "Where to write the scoreboard: a file path or \"-\" for stdout",
						Value:   stdioName,
					},
					&cli.StringFlag{
						Name:    formatFlag,
						Aliases: []string{"f"},
						Usage:   "Output format: table, yaml or json",
						Value:   formatTable,
					},
				},
				Action: scoreAction,
			},
			{
				Name:  "demo",
				Usage: "Write the demo regatta sheet",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     outputFlag,
						Aliases:  []string{"o"},
						Usage:    "Where to write the sheet: a file path or \"-\" for stdout",
						Required: true,
					},
				},
				Action: func(cCtx *cli.Context) error {
					out := output(cCtx, cCtx.String(outputFlag))
					if err := sheet.Encode(out, sheet.Demo()); err != nil {
						_ = out.Close()
						return cli.Exit(fmt.Sprintf("encoding sheet failed: %v", err), exitEncode)
					}
					return out.Close()
				},
			},
		},
	}
}

func scoreAction(cCtx *cli.Context) error {
	tb, err := scoring.ParseTieBreak(cCtx.String(tieBreakFlag))
	if err != nil {
		return err
	}
	format := cCtx.String(formatFlag)
	switch format {
	case formatTable, formatYAML, formatJSON:
	default:
		return fmt.Errorf("unknown format %q", format)
	}

	in, closeIn, err := input(cCtx, cCtx.String(inputFlag))
	if err != nil {
		return cli.Exit(err.Error(), exitInput)
	}
	defer closeIn()

	sh, err := sheet.Decode(in)
	if err != nil {
		return cli.Exit(err.Error(), exitInput)
	}
	g, roster, err := sh.ToDomain()
	if err != nil {
		return cli.Exit(err.Error(), exitInput)
	}
	sb, _ := types.Compute(scoring.NewCalculator(scoring.WithTieBreak(tb)), g, roster)

	out := output(cCtx, cCtx.String(outputFlag))
	if err := write(out, format, sb); err != nil {
		_ = out.Close()
		return cli.Exit(fmt.Sprintf("writing scoreboard failed: %v", err), exitEncode)
	}
	return out.Close()
}

func input(cCtx *cli.Context, name string) (io.Reader, func(), error) {
	if name == stdioName {
		return cCtx.App.Reader, func() {}, nil
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { _ = f.Close() }, nil
}

func output(cCtx *cli.Context, name string) io.WriteCloser {
	if name == stdioName {
		return nopWriteCloser{cCtx.App.Writer}
	}
	return newLazyWriteCloser(func() (io.WriteCloser, error) {
		return os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	})
}

func write(w io.Writer, format string, sb types.Scoreboard) error {
	switch format {
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(sb); err != nil {
			return err
		}
		return enc.Close()
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(sb)
	default:
		return sheet.RenderTable(w, sb)
	}
}
