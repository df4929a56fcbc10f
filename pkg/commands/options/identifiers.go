package options

import (
	"github.com/spf13/cobra"
)

// IDOptions
type IDOptions struct {
	ShowID bool
	ID     string
}

func AddShowIDArgs(cmd *cobra.Command, o *IDOptions) {
	cmd.Flags().BoolVarP(&o.ShowID, "show-id", "k", false,
		"Show the object id of each note.")
}

func AddIDArgs(cmd *cobra.Command, o *IDOptions) {
	cmd.Flags().StringVar(&o.ID, "id", "",
		"Specify the object id of a note.")
}

// OwnerOptions
type OwnerOptions struct {
	Owner string
}

func AddOwnerArgs(cmd *cobra.Command, o *OwnerOptions) {
	cmd.Flags().StringVar(&o.Owner, "owner", "",
		"Address whose notes to use. Defaults to the configured owner, then the sui CLI active address.")
}
