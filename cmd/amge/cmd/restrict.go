package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"k3l.io/go-amge/pkg/amge"
	"k3l.io/go-amge/pkg/server"
	"k3l.io/go-amge/pkg/util"
)

var restrictCmd = &cobra.Command{
	Use:   "restrict",
	Short: "Build a restriction matrix",
	Long: `Build the restriction matrix of a uniformly refined unit hypercube
and write it as "row,dof,value" CSV.

Every flag may also be given in the config file, or as an AMGE_* environment
variable, under its name with dashes replaced by underscores.`,
	Args: cobra.NoArgs,
	RunE: runRestrict,
}

func init() {
	rootCmd.AddCommand(restrictCmd)
	flags := restrictCmd.Flags()
	flags.Int("dim", 2, "mesh dimension (1-3)")
	flags.Int("refinements", 4, "number of uniform refinements")
	flags.Int("ranks", 1, "number of ranks")
	flags.String("evaluator", server.EvaluatorLaplace,
		`operator to coarsen ("laplace" or "identity")`)
	flags.IntSlice("agglomerate-shape", nil,
		"cells per agglomerate along each axis (default: 2 per axis)")
	flags.Int("num-eigenvectors", 1, "eigenvectors per agglomerate")
	flags.Float64("eigen-tolerance", 1e-12,
		"relative residual bound of accepted eigenpairs")
	flags.Bool("verify", false,
		"check that the weights of every fine DoF sum to 1")
	flags.StringP("output", "o", util.StdoutName,
		"output CSV file or s3://bucket/key (- means stdout)")
	for _, name := range []string{
		"dim", "refinements", "ranks", "evaluator", "agglomerate-shape",
		"num-eigenvectors", "eigen-tolerance", "verify", "output",
	} {
		if err := viper.BindPFlag(viperKey(name), flags.Lookup(name)); err != nil {
			panic(err)
		}
	}
}

func requestFromViper() *server.Request {
	dim := viper.GetInt("dim")
	cfg := amge.DefaultConfig(dim)
	if shape := viper.GetIntSlice("agglomerate_shape"); len(shape) > 0 {
		cfg.AgglomerateShape = shape
	}
	cfg.NumEigenvectors = viper.GetInt("num_eigenvectors")
	cfg.EigenTolerance = viper.GetFloat64("eigen_tolerance")
	return &server.Request{
		Dim:         dim,
		Refinements: viper.GetInt("refinements"),
		Ranks:       viper.GetInt("ranks"),
		Evaluator:   viper.GetString("evaluator"),
		Config:      cfg,
		Verify:      viper.GetBool("verify"),
	}
}

func runRestrict(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(logger.WithContext(context.Background()),
		os.Interrupt)
	defer stop()
	req := requestFromViper()
	logger.Debug().
		Int("dim", req.Dim).
		Int("refinements", req.Refinements).
		Int("ranks", req.Ranks).
		Ints("agglomerateShape", req.Config.AgglomerateShape).
		Int("numEigenvectors", req.Config.NumEigenvectors).
		Float64("eigenTolerance", req.Config.EigenTolerance).
		Msg("building restriction")
	r, err := server.Build(ctx, req)
	if err != nil {
		logger.Error().Err(err).Msg("build failed")
		return err
	}
	if req.Verify {
		logger.Info().
			Float64("deviation", r.Deviation).
			Msg("partition of unity verified")
	}
	return writeOutput(ctx, r.Matrix, viper.GetString("output"))
}
