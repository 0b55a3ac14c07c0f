package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"firestige.xyz/modbusdump/internal/source"
)

var interfacesCmd = &cobra.Command{
	Use:     "interfaces",
	Aliases: []string{"if"},
	Short:   "List interfaces available for capture",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runInterfaces(cmd.OutOrStdout(), source.Interfaces)
	},
}

func runInterfaces(w io.Writer, list func() ([]source.Interface, error)) error {
	ifaces, err := list()
	if err != nil {
		return fmt.Errorf("list interfaces: %w", err)
	}
	if len(ifaces) == 0 {
		fmt.Fprintln(w, "no interfaces found")
		return nil
	}
	for i, iface := range ifaces {
		fmt.Fprintf(w, "%d. %s", i+1, iface.Name)
		if iface.Description != "" {
			fmt.Fprintf(w, " (%s)", iface.Description)
		}
		if len(iface.Addresses) > 0 {
			fmt.Fprintf(w, " [%s]", strings.Join(iface.Addresses, ", "))
		}
		fmt.Fprintln(w)
	}
	return nil
}
