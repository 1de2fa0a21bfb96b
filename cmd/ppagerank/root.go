package main

import (
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/katalvlaran/ppagerank/bsmat"
	"github.com/katalvlaran/ppagerank/pagerank"
	"github.com/katalvlaran/ppagerank/spmd"
)

const version = "ppagerank 1.0.0"

// topK is how many entries of the ranking the summary prints.
const topK = 10

// Exit codes.
const (
	exitOK           = 0
	exitConfig       = 1
	exitLoad         = 2
	exitNotConverged = 3
)

var rootCmd = &cobra.Command{
	Use:   "ppagerank",
	Short: "Distributed PageRank over a binary sparse-matrix file",
	Long: `ppagerank loads a binary sparse matrix, partitions its rows over a group of
in-process ranks, and runs the PageRank power iteration to convergence.

The matrix file is little-endian: a header of rows(int32) cols(int32)
nnz(int64) followed by nnz records of row(int32) col(int32) weight(float64).
Pass -trans when edges are stored column-major (edge i->j in row j).`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

// Execute runs the command and maps the error taxonomy onto exit codes:
// 0 success, 1 configuration, 2 load/format, 3 non-convergence.
func Execute() int {
	err := rootCmd.Execute()
	if err == nil {
		return exitOK
	}
	fmt.Fprintln(os.Stderr, "ppagerank:", err)
	switch {
	case errors.Is(err, pagerank.ErrNotConverged):
		return exitNotConverged
	case errors.Is(err, pagerank.ErrBadAlpha),
		errors.Is(err, pagerank.ErrBadTolerance),
		errors.Is(err, pagerank.ErrBadMaxIter),
		errors.Is(err, pagerank.ErrBadPersonalization),
		errors.Is(err, errMissingMatrix),
		errors.Is(err, errBadFlag):
		return exitConfig
	default:
		return exitLoad
	}
}

var (
	errMissingMatrix = errors.New("a matrix file is required (-m)")
	errBadFlag       = errors.New("invalid flag value")
)

func init() {
	cobra.OnInitialize(initConfig)

	f := rootCmd.Flags()
	f.StringP("matrix", "m", "", "binary sparse-matrix file (required)")
	f.Float64("alpha", pagerank.DefaultAlpha, "damping factor in [0,1)")
	f.String("pvec", "", "binary personalization vector file (default uniform)")
	f.Bool("trans", false, "matrix is stored column-major (edge i->j in row j)")
	f.Bool("noout", false, "suppress banner, stats, and progress output")
	f.Int("np", 1, "number of in-process ranks")
	f.Float64("tol", pagerank.DefaultTolerance, "L1 convergence tolerance")
	f.Int("maxiter", pagerank.DefaultMaxIterations, "iteration cap")
	f.Int64("matload_root_nz_bufsize", bsmat.DefaultRootNzBufsize,
		"max non-zeros buffered on the reader rank per forwarding round")
	f.Bool("matload_redistribute", false, "rebalance rows by weighted non-zero cost after loading")
	f.Int64("matload_redistribute_wnnz", 1, "per-non-zero weight for rebalancing")
	f.Int64("matload_redistribute_wrows", 1, "per-row weight for rebalancing")

	_ = viper.BindPFlags(f)
}

func initConfig() {
	viper.SetEnvPrefix("PPAGERANK")
	viper.AutomaticEnv()
}

func run(cmd *cobra.Command, args []string) error {
	matrixPath := viper.GetString("matrix")
	if matrixPath == "" {
		return errMissingMatrix
	}
	np := viper.GetInt("np")
	if np < 1 {
		return fmt.Errorf("%w: np must be at least 1, got %d", errBadFlag, np)
	}
	if n := viper.GetInt64("matload_root_nz_bufsize"); n < 1 {
		return fmt.Errorf("%w: matload_root_nz_bufsize must be positive, got %d", errBadFlag, n)
	}

	// Scalar engine parameters fail here, before any rank opens the matrix:
	// a configuration mistake must never cost a full load.
	if a := viper.GetFloat64("alpha"); a < 0 || a >= 1 || math.IsNaN(a) {
		return fmt.Errorf("%w: %g", pagerank.ErrBadAlpha, a)
	}
	if tol := viper.GetFloat64("tol"); tol <= 0 || math.IsNaN(tol) {
		return fmt.Errorf("%w: %g", pagerank.ErrBadTolerance, tol)
	}
	if iters := viper.GetInt("maxiter"); iters <= 0 {
		return fmt.Errorf("%w: %d", pagerank.ErrBadMaxIter, iters)
	}
	quiet := viper.GetBool("noout")

	if !quiet {
		host, _ := os.Hostname()
		fmt.Printf("%s\n", version)
		fmt.Printf("started %s, %d rank(s) on %s\n", time.Now().Format(time.RFC1123), np, host)
		fmt.Printf("matrix: %s\n", matrixPath)
	}

	return spmd.Run(np, func(c spmd.Comm) error {
		return runRank(c, quiet)
	})
}

// runRank is the SPMD body: every rank executes it in lockstep.
func runRank(c spmd.Comm, quiet bool) error {
	// 1) Load and partition the matrix (collective).
	m, err := bsmat.Load(c, viper.GetString("matrix"),
		bsmat.WithRootNzBufsize(viper.GetInt64("matload_root_nz_bufsize")))
	if err != nil {
		return err
	}

	// 2) Optional weighted rebalancing of the row partition.
	if viper.GetBool("matload_redistribute") {
		m, err = m.Balanced(
			viper.GetInt64("matload_redistribute_wnnz"),
			viper.GetInt64("matload_redistribute_wrows"),
		)
		if err != nil {
			return err
		}
	}

	// 3) Layout statistics, reduced across the group, printed once.
	stats, err := m.Collect()
	if err != nil {
		return err
	}
	if !quiet && c.Rank() == 0 {
		fmt.Printf("rows       : %d\n", stats.Rows)
		fmt.Printf("cols       : %d\n", stats.Cols)
		fmt.Printf("nnz        : %d\n", stats.GlobalNNZ)
		fmt.Printf("local rows : min %d  max %d\n", stats.MinLocalRows, stats.MaxLocalRows)
		fmt.Printf("local nnz  : min %d  max %d\n", stats.MinLocalNNZ, stats.MaxLocalNNZ)
	}

	// 4) Engine options from the flag surface.
	opts := []pagerank.Option{
		pagerank.Alpha(viper.GetFloat64("alpha")),
		pagerank.Tolerance(viper.GetFloat64("tol")),
		pagerank.MaxIterations(viper.GetInt("maxiter")),
	}
	if viper.GetBool("trans") {
		opts = append(opts, pagerank.WithTranspose())
	}
	if pvecPath := viper.GetString("pvec"); pvecPath != "" {
		pvec, err := bsmat.LoadVector(c, pvecPath, m.Partition())
		if err != nil {
			return err
		}
		opts = append(opts, pagerank.WithPersonalization(pvec))
	}
	if !quiet && c.Rank() == 0 {
		opts = append(opts, pagerank.WithProgress(func(iter int, delta float64) {
			fmt.Printf("iter %4d  delta %.6e\n", iter, delta)
		}))
	}

	// 5) Iterate. Non-convergence still carries a usable last iterate, so the
	//    summary is printed before the error propagates to the exit code.
	res, cerr := pagerank.Compute(m, opts...)
	if cerr != nil && !errors.Is(cerr, pagerank.ErrNotConverged) {
		return cerr
	}

	if err := printSummary(c, res, quiet); err != nil {
		return err
	}

	return cerr
}

// printSummary gathers the full vector and prints the outcome and the top of
// the ranking on rank 0.
func printSummary(c spmd.Comm, res *pagerank.Result, quiet bool) error {
	full, err := spmd.AllGatherv(c, res.Vector)
	if err != nil {
		return err
	}
	if quiet || c.Rank() != 0 {
		return nil
	}

	fmt.Printf("state      : %s\n", res.State)
	fmt.Printf("iterations : %d\n", res.Iterations)
	fmt.Printf("delta      : %.6e\n", res.Delta)
	fmt.Printf("dangling   : %d\n", res.DanglingCount)

	order := make([]int, len(full))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return full[order[a]] > full[order[b]] })
	k := topK
	if len(order) < k {
		k = len(order)
	}
	for i := 0; i < k; i++ {
		fmt.Printf("  #%-2d node %-10d %.8f\n", i+1, order[i], full[order[i]])
	}

	return nil
}
