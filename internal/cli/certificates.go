package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newCertificatesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "certificates",
		Short: "List certificates",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List certificates, newest first",
		Args:  cobra.NoArgs,
		RunE:  runCertificatesList,
	})
	return cmd
}

func runCertificatesList(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	certs := a.fetcher.Certificates(cmd.Context())
	if flags.jsonMode {
		return printJSON(cmd.OutOrStdout(), certs)
	}

	out := cmd.OutOrStdout()
	if len(certs) == 0 {
		fmt.Fprintln(out, "No certificates found.")
		return nil
	}
	rows := make([][]string, 0, len(certs))
	for _, c := range certs {
		rows = append(rows, []string{strconv.FormatInt(c.ID, 10), c.Img})
	}
	printTable(out, []string{"ID", "IMAGE"}, rows)
	fmt.Fprintf(out, "Total: %d certificate(s)\n", len(certs))
	return nil
}
