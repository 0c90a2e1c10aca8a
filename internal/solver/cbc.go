package solver

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/zBotta/crop-planner/internal/model"
)

// CBC drives the Coin-OR branch-and-cut binary through files: the model is
// written in CPLEX LP format, the binary is invoked, and the solution file
// is parsed back. The binary is located on PATH at construction time.
type CBC struct {
	log  zerolog.Logger
	path string
}

// NewCBC creates the CBC engine. The engine is unavailable when no cbc
// binary is on PATH.
func NewCBC(log zerolog.Logger) *CBC {
	path, err := exec.LookPath("cbc")
	if err != nil {
		path = ""
	}
	return &CBC{
		log:  log.With().Str("component", "solver_cbc").Logger(),
		path: path,
	}
}

// Name implements Engine.
func (c *CBC) Name() string { return "cbc" }

// Available implements Engine.
func (c *CBC) Available() bool { return c.path != "" }

// Solve implements Engine.
func (c *CBC) Solve(ctx context.Context, m *model.Model, objective *model.LinExpr, opts Options) (*Result, error) {
	if c.path == "" {
		return nil, fmt.Errorf("cbc binary not found on PATH")
	}

	dir, err := os.MkdirTemp("", "cropplanner-cbc-")
	if err != nil {
		return nil, fmt.Errorf("creating solve workspace: %w", err)
	}
	defer os.RemoveAll(dir)

	modelPath := filepath.Join(dir, "model.lp")
	solnPath := filepath.Join(dir, "solution.txt")

	f, err := os.Create(modelPath)
	if err != nil {
		return nil, err
	}
	if err := WriteLP(f, m, objective); err != nil {
		f.Close()
		return nil, fmt.Errorf("writing LP file: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, c.path, modelPath, "solve", "solution", solnPath)
	if opts.Verbose {
		cmd.Stdout = os.Stderr
		cmd.Stderr = os.Stderr
	}
	c.log.Debug().Str("model", modelPath).Msg("Invoking cbc")
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("running cbc: %w", err)
	}

	sf, err := os.Open(solnPath)
	if err != nil {
		return nil, fmt.Errorf("reading cbc solution: %w", err)
	}
	defer sf.Close()

	res, err := parseCBCSolution(sf, m)
	if err != nil {
		return nil, err
	}
	if res.Status == StatusOptimal {
		// Recompute from variable values: the solution file's objective
		// does not carry the expression's constant part.
		res.Objective = objective.Value(res.Values)
	}
	return res, nil
}

// WriteLP renders the model and objective in CPLEX LP format, the exchange
// format the Coin-OR binaries consume.
func WriteLP(w io.Writer, m *model.Model, objective *model.LinExpr) error {
	bw := bufio.NewWriter(w)

	n := m.NumVars()
	fmt.Fprintln(bw, "Minimize")
	fmt.Fprintf(bw, " obj:%s\n", lpTerms(objective.Dense(n), m))

	fmt.Fprintln(bw, "Subject To")
	for i, con := range m.Constraints() {
		row := lpTerms(con.Expr.Dense(n), m)
		lo := con.Lower - con.Expr.Offset()
		hi := con.Upper - con.Expr.Offset()
		name := con.Name
		if name == "" {
			name = fmt.Sprintf("c%d", i)
		}
		switch {
		case lo == hi:
			fmt.Fprintf(bw, " %s:%s = %s\n", name, row, lpNum(lo))
		case math.IsInf(lo, -1):
			fmt.Fprintf(bw, " %s:%s <= %s\n", name, row, lpNum(hi))
		case math.IsInf(hi, 1):
			fmt.Fprintf(bw, " %s:%s >= %s\n", name, row, lpNum(lo))
		default:
			// Ranged row: emit both sides under distinct names.
			fmt.Fprintf(bw, " %s_lo:%s >= %s\n", name, row, lpNum(lo))
			fmt.Fprintf(bw, " %s_hi:%s <= %s\n", name, row, lpNum(hi))
		}
	}

	fmt.Fprintln(bw, "Bounds")
	for _, v := range m.Vars() {
		switch {
		case v.Free():
			fmt.Fprintf(bw, " %s free\n", v.Name)
		case math.IsInf(v.Upper, 1):
			fmt.Fprintf(bw, " %s >= %s\n", v.Name, lpNum(v.Lower))
		default:
			fmt.Fprintf(bw, " %s <= %s <= %s\n", lpNum(v.Lower), v.Name, lpNum(v.Upper))
		}
	}

	fmt.Fprintln(bw, "End")
	return bw.Flush()
}

func lpTerms(coeffs []float64, m *model.Model) string {
	var sb strings.Builder
	wrote := false
	for i, coeff := range coeffs {
		if coeff == 0 {
			continue
		}
		if coeff < 0 {
			sb.WriteString(" - ")
		} else if wrote {
			sb.WriteString(" + ")
		} else {
			sb.WriteString(" ")
		}
		fmt.Fprintf(&sb, "%s %s", lpNum(math.Abs(coeff)), m.Vars()[i].Name)
		wrote = true
	}
	if !wrote {
		// An empty expression is still valid as "0 <first-var>".
		fmt.Fprintf(&sb, " 0 %s", m.Vars()[0].Name)
	}
	return sb.String()
}

func lpNum(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func parseCBCSolution(r io.Reader, m *model.Model) (*Result, error) {
	byName := make(map[string]model.VarID, m.NumVars())
	for _, v := range m.Vars() {
		byName[v.Name] = v.ID
	}

	res := &Result{Status: StatusFailed, Values: make([]float64, m.NumVars())}

	scanner := bufio.NewScanner(r)
	first := true
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if first {
			first = false
			switch {
			case strings.HasPrefix(line, "Optimal"):
				res.Status = StatusOptimal
			case strings.Contains(line, "Infeasible"):
				res.Status = StatusInfeasible
			case strings.Contains(line, "Unbounded"):
				res.Status = StatusUnbounded
			}
			continue
		}
		// Column lines: index, name, value, reduced cost.
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		id, ok := byName[fields[1]]
		if !ok {
			continue
		}
		value, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return nil, fmt.Errorf("parsing cbc solution value for %s: %w", fields[1], err)
		}
		res.Values[id] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return res, nil
}
