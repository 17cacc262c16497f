package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/turtacn/smilescombine/internal/application/library"
	"github.com/turtacn/smilescombine/pkg/errors"
)

// defaultLibraryName names the output when neither --name nor --output is
// given.
const defaultLibraryName = "library"

type combineOptions struct {
	Name          string
	Skeleton      string
	Substituents  []string
	NMax          int
	NConnect      int
	ConnectAtom   string
	AutoPlacement bool
	Output        string
}

// libraryReport is the printable outcome of one run.
type libraryReport struct {
	*library.Result
}

func (r libraryReport) String() string {
	return fmt.Sprintf("%sWrote %d structures to %s\n",
		r.Summary, r.Run.Combinations, r.Run.OutputPath)
}

func newCombineCmd() *cobra.Command {
	opts := &combineOptions{}

	cmd := &cobra.Command{
		Use:   "combine",
		Short: "Enumerate the substituted derivatives of one skeleton",
		Long: "Places up to --nmax substituents plus --nconnect connector atoms on the\n" +
			"vacant sites of the skeleton and writes every unique canonical structure,\n" +
			"sorted in descending order, one per line.",
		Example: `  smilescombine combine -s 'c1ccccc1' -r '(F)' -r '(OC)' --nmax 2 --nconnect 0
  smilescombine combine -s 'c1(Br)ccc(Br)cc1' -r '(N)' --auto-placement=false --output amines.smi`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Skeleton == "" {
				return errors.InvalidParam("--skeleton is required")
			}
			return withApp(cmd, func(a *app) error {
				res, err := a.service.Generate(cmd.Context(), opts.request(cmd))
				if err != nil {
					return err
				}
				return PrintResult(cmd, libraryReport{res})
			})
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.Skeleton, "skeleton", "s", "", "skeleton SMILES (required)")
	f.StringArrayVarP(&opts.Substituents, "substituent", "r", nil, "substituent fragment, e.g. '(F)'; repeatable")
	f.IntVar(&opts.NMax, "nmax", -1, "maximum substitutions including connectors; negative means unbounded")
	f.IntVar(&opts.NConnect, "nconnect", 0, "sites reserved for connector atoms")
	f.StringVar(&opts.ConnectAtom, "connect-atom", "", "connector element (default from config, Br)")
	f.BoolVar(&opts.AutoPlacement, "auto-placement", true, "use every aromatic CH as a site instead of connector markers")
	f.StringVar(&opts.Name, "name", "", "library name (default: output file stem, or \""+defaultLibraryName+"\")")
	f.StringVarP(&opts.Output, "output", "f", "", "output file (default <output_dir>/<name>.smi)")
	return cmd
}

// request maps the flags to a service request.  Option flags the user did
// not set are left nil so configured defaults apply.
func (o *combineOptions) request(cmd *cobra.Command) *library.Request {
	req := &library.Request{
		Name:         o.Name,
		Skeleton:     o.Skeleton,
		Substituents: o.Substituents,
		ConnectAtom:  o.ConnectAtom,
		Output:       o.Output,
		Source:       library.SourceCLI,
	}
	if req.Name == "" && req.Output == "" {
		req.Name = defaultLibraryName
	}
	f := cmd.Flags()
	if f.Changed("nmax") {
		n := o.NMax
		req.NMax = &n
	}
	if f.Changed("nconnect") {
		n := o.NConnect
		req.NConnect = &n
	}
	if f.Changed("auto-placement") {
		b := o.AutoPlacement
		req.AutoPlacement = &b
	}
	return req
}

type batchReport struct {
	Results []*library.Result `json:"results"`
}

func (r batchReport) TableHeaders() []string {
	return []string{"NAME", "SITES", "STRUCTURES", "OUTPUT", "RUN"}
}

func (r batchReport) TableRows() [][]string {
	rows := make([][]string, 0, len(r.Results))
	for _, res := range r.Results {
		rows = append(rows, []string{
			res.Run.Name,
			fmt.Sprint(res.Run.VacantSites),
			fmt.Sprint(res.Run.Combinations),
			res.Run.OutputPath,
			res.Run.ID,
		})
	}
	return rows
}

func newBatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "batch MANIFEST",
		Short: "Run every job of a YAML manifest",
		Long: "Runs the jobs of a manifest in order, one output file per job, and stops\n" +
			"at the first failing job.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			manifest, err := library.LoadManifest(args[0])
			if err != nil {
				return err
			}
			if manifest.OutputDir != "" {
				cliCtx.Config.Combiner.OutputDir = manifest.OutputDir
			}
			return withApp(cmd, func(a *app) error {
				results, err := a.service.Batch(cmd.Context(), manifest.Requests(library.SourceCLI))
				if len(results) > 0 {
					if perr := PrintResult(cmd, batchReport{Results: results}); perr != nil {
						return perr
					}
				}
				return err
			})
		},
	}
}

//Personal.AI order the ending
