package info

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"gopkg.in/yaml.v3"

	"tableflip.dev/fridge/pkg/app"
	"tableflip.dev/fridge/pkg/config"
)

// Report is what info prints.
type Report struct {
	Config     *config.Config `json:"config" yaml:"config"`
	ConfigPath string         `json:"configPathEnv,omitempty" yaml:"configPathEnv,omitempty"`
	TypeTag    string         `json:"typeTag,omitempty" yaml:"typeTag,omitempty"`
	Colors     int            `json:"colors" yaml:"colors"`
	Warnings   []string       `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Info describes the resolved configuration and the overlay store.
type Info struct {
	Service *app.Service
	// Output is "", "json", or "yaml".
	Output string
	Out    io.Writer
}

func (n *Info) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not describe, no service")
	}
	out := n.Out
	if out == nil {
		out = color.Output
	}

	r := Report{
		Config:     n.Service.Config,
		ConfigPath: os.Getenv("FRIDGE_CONFIG_PATH"),
		TypeTag:    n.Service.Config.TypeTag(),
		Colors:     len(n.Service.Overlay.All(ctx)),
	}
	for _, w := range n.Service.Warnings() {
		r.Warnings = append(r.Warnings, w.Error())
	}

	switch n.Output {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case "yaml":
		enc := yaml.NewEncoder(out)
		defer enc.Close()
		return enc.Encode(r)
	case "":
	default:
		return fmt.Errorf("info: unknown output %q", n.Output)
	}

	if r.ConfigPath != "" {
		_, _ = fmt.Fprintln(out, "FRIDGE_CONFIG_PATH found on env, using ", r.ConfigPath)
	} else {
		_, _ = fmt.Fprintln(out, "FRIDGE_CONFIG_PATH env var not set")
	}

	bold := color.New(color.Bold)
	cfg := r.Config
	source := cfg.Source
	if source == "" {
		source = "(defaults and environment)"
	}
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("config"), source)
	tbl.AddRow(bold.Sprint("package"), orNone(cfg.Package))
	tbl.AddRow(bold.Sprint("type"), orNone(r.TypeTag))
	tbl.AddRow(bold.Sprint("owner"), orNone(cfg.Owner))
	tbl.AddRow(bold.Sprint("rpc"), cfg.RPC)
	tbl.AddRow(bold.Sprint("chain"), cfg.Chain)
	tbl.AddRow(bold.Sprint("interval"), cfg.Interval.String())
	tbl.AddRow(bold.Sprint("path"), cfg.BasePath())
	tbl.AddRow(bold.Sprint("colors"), fmt.Sprintf("%d saved", r.Colors))
	tbl.RightAlign(0)
	_, _ = fmt.Fprintln(out, tbl)

	for _, w := range r.Warnings {
		_, _ = color.New(color.FgYellow).Fprintf(out, "! %s\n", w)
	}
	return nil
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
