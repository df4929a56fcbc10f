package options

import (
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// OutputOptions
type OutputOptions struct {
	JSON bool
}

func AddOutputArg(cmd *cobra.Command, po *OutputOptions) {
	cmd.Flags().BoolVar(&po.JSON, "json", false,
		"Output as JSON.")
}

// HandleError prints err as {"error": ...} in JSON mode and swallows it so
// the exit is clean for scripts; otherwise err is returned unchanged.
func (o *OutputOptions) HandleError(err error) error {
	if o.JSON && err != nil {
		out := map[string]string{
			"error": err.Error(),
		}
		b, err := json.Marshal(out)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(color.Output, string(b))
		return nil
	}
	return err
}

// FormatOptions selects a structured output format.
type FormatOptions struct {
	Format string
}

func AddFormatArg(cmd *cobra.Command, o *FormatOptions) {
	cmd.Flags().StringVarP(&o.Format, "output", "o", "",
		"Output format. One of 'yaml' or 'json'.")
}

// Validate rejects unknown formats before any work is done.
func (o *FormatOptions) Validate() error {
	switch o.Format {
	case "", "json", "yaml":
		return nil
	default:
		return fmt.Errorf("unknown output format %q, want 'yaml' or 'json'", o.Format)
	}
}
