package cli

import (
	"github.com/spf13/cobra"

	"github.com/turtacn/smilescombine/pkg/errors"
)

func newRingsCmd() *cobra.Command {
	var (
		skeleton     string
		substituents []string
	)
	cmd := &cobra.Command{
		Use:   "rings",
		Short: "Shift substituent ring labels past the skeleton's aromatic rings",
		Long: "Prints each substituent with its ring-closure labels renumbered so they do\n" +
			"not collide with the skeleton's own labels.  Substituents without aromatic\n" +
			"rings are printed unchanged.",
		Example: `  smilescombine rings -s 'c1ccc2ccccc2c1' -r '(c1ccccc1)' -r '(F)'`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				out, err := a.service.AssignRingOrder(cmd.Context(), skeleton, substituents)
				if err != nil {
					return err
				}
				return PrintResult(cmd, out)
			})
		},
	}
	cmd.Flags().StringVarP(&skeleton, "skeleton", "s", "", "skeleton SMILES (required)")
	cmd.Flags().StringArrayVarP(&substituents, "substituent", "r", nil, "substituent fragment; repeatable")
	return cmd
}

func newCanonCmd() *cobra.Command {
	var explicitH bool
	cmd := &cobra.Command{
		Use:   "canon SMILES...",
		Short: "Print the canonical form of each SMILES",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				out := make([]string, 0, len(args))
				for _, s := range args {
					c, err := a.service.Canonicalize(cmd.Context(), s, explicitH)
					if err != nil {
						return errors.Wrap(err, errors.CodeUnknown, "canonicalize").WithDetail(s)
					}
					out = append(out, c)
				}
				return PrintResult(cmd, out)
			})
		},
	}
	cmd.Flags().BoolVar(&explicitH, "explicit-h", false, "write every atom in brackets with its hydrogen count")
	return cmd
}

//Personal.AI order the ending
