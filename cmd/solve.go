package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/cwbudde/dlogsolve/internal/dlog"
	"github.com/cwbudde/dlogsolve/internal/modarith"
	"github.com/cwbudde/dlogsolve/internal/progress"
)

var (
	solveBase   string
	solveTarget string
	solvePrime  string
	solveMethod string
)

var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Solve g^x ≡ h (mod p)",
	Long: `Solves the discrete logarithm problem with baby-step giant-step or Pollard's rho.
Values not given as flags are prompted for. Numbers accept 0x, 0o and 0b prefixes.`,
	Args: cobra.NoArgs,
	RunE: runSolve,
}

func init() {
	solveCmd.Flags().StringVar(&solveBase, "base", "", "Base g")
	solveCmd.Flags().StringVar(&solveTarget, "target", "", "Target h")
	solveCmd.Flags().StringVar(&solvePrime, "prime", "", "Prime modulus p")
	solveCmd.Flags().StringVar(&solveMethod, "method", "", "Method: baby-step or pollard")

	rootCmd.AddCommand(solveCmd)
}

func runSolve(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	p := newPrompter(cmd.InOrStdin(), out)

	baseStr, err := p.valueOr(solveBase, "Enter the base (g in g^x mod p): ")
	if err != nil {
		return err
	}
	targetStr, err := p.valueOr(solveTarget, "Enter the target (h in g^x ≡ h mod p): ")
	if err != nil {
		return err
	}
	primeStr, err := p.valueOr(solvePrime, "Enter the prime modulus (p): ")
	if err != nil {
		return err
	}
	methodStr, err := p.valueOr(solveMethod, "Choose a method ('baby-step' or 'pollard'): ")
	if err != nil {
		return err
	}

	base, err := modarith.Parse(baseStr)
	if err != nil {
		return fmt.Errorf("base: %w", err)
	}
	target, err := modarith.Parse(targetStr)
	if err != nil {
		return fmt.Errorf("target: %w", err)
	}
	prime, err := modarith.Parse(primeStr)
	if err != nil {
		return fmt.Errorf("prime: %w", err)
	}
	method, err := dlog.ParseMethod(methodStr)
	if err != nil {
		return err
	}

	group, err := dlog.NewGroup(base, prime)
	if err != nil {
		return err
	}
	if err := group.Check(target); err != nil {
		return err
	}

	fmt.Fprintf(out, "Solving the discrete log problem for base=%s, target=%s, prime=%s using %s method...\n",
		modarith.String(base), modarith.String(target), modarith.String(prime), method)

	sol, err := dlog.Solve(base, target, prime, method)
	if err != nil {
		return err
	}

	slog.Info("Solve finished", "method", method.String(), "found", sol.Found, "elapsed", sol.Elapsed)

	if !sol.Found {
		progress.Failure(out, "No solution found.")
		return nil
	}
	progress.Success(out, "Solution found: x = %s", modarith.String(sol.X))
	if !sol.Verified {
		progress.Failure(out, "Warning: %s^%s mod %s does not equal %s; the collision was not invertible.",
			modarith.String(base), modarith.String(sol.X), modarith.String(prime), modarith.String(target))
	}
	return nil
}
