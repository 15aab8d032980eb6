// Package output provides utilities for formatting and displaying simulation results.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/R-Oraby/Macro-Models/internal/model"
	"github.com/R-Oraby/Macro-Models/internal/simulation"
	"github.com/R-Oraby/Macro-Models/pkg/constants"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
)

// Report is the serialized view of a run.
type Report struct {
	RunID          string                        `json:"runId" yaml:"runId"`
	Solver         string                        `json:"solver" yaml:"solver"`
	Seed           uint64                        `json:"seed" yaml:"seed"`
	ShocksDisabled bool                          `json:"shocksDisabled" yaml:"shocksDisabled"`
	Parameters     model.Parameters              `json:"parameters" yaml:"parameters"`
	Rows           []simulation.Row              `json:"rows" yaml:"rows"`
	Convergence    simulation.ConvergenceSummary `json:"convergence" yaml:"convergence"`
	Comparison     []simulation.Fit              `json:"comparison" yaml:"comparison"`
}

// NewReport collects the reported views of result.
func NewReport(result *simulation.Result) Report {
	return Report{
		RunID:          result.RunID,
		Solver:         result.Solver,
		Seed:           result.Seed,
		ShocksDisabled: result.ShocksDisabled,
		Parameters:     result.Parameters,
		Rows:           result.Rows(),
		Convergence:    result.ConvergenceSummary(),
		Comparison:     result.Compare(),
	}
}

// Write renders result to w in the given format.
func Write(w io.Writer, format string, result *simulation.Result) error {
	switch format {
	case constants.OutputFormatPretty:
		WritePretty(w, result)
	case constants.OutputFormatCSV:
		_, err := io.WriteString(w, CsvString(result))
		return err
	case constants.OutputFormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(NewReport(result))
	case constants.OutputFormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(NewReport(result)); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported output format %s", format)
	}
	return nil
}

// PrettyFormat outputs a human-readable rather than machine-readable table.
func PrettyFormat(result *simulation.Result) {
	WritePretty(os.Stdout, result)
}

// WritePretty writes the human-readable report to w.
func WritePretty(w io.Writer, result *simulation.Result) {
	p := message.NewPrinter(language.English)

	shockNote := fmt.Sprintf("seed %d", result.Seed)
	if result.ShocksDisabled {
		shockNote = "shocks disabled"
	}
	fmt.Fprintf(w, "--- Simulation %s (solver %s, %s) ---\n", result.RunID, result.Solver, shockNote)
	fmt.Fprintf(w, "Year | Growth sim/obs    | Inflation sim/obs | Rate sim/obs      | Exchange sim/obs      | Converged\n")
	fmt.Fprintf(w, "____ | _________________ | _________________ | _________________ | _____________________ | _________\n")
	for _, row := range result.Rows() {
		status := "yes"
		switch {
		case row.Seeded:
			status = "seeded"
		case !row.Simulated.Converged:
			status = "NO"
		}
		// Years go through fmt so they are not digit-grouped.
		fmt.Fprintf(w, "%4d | ", row.Year)
		_, _ = p.Fprintf(w, "%7.2f / %7.2f | %7.2f / %7.2f | %7.2f / %7.2f | %9.2f / %9.2f | %s\n",
			row.Simulated.OutputGrowth, row.Actual.OutputGrowth,
			row.Simulated.Inflation, row.Actual.Inflation,
			row.Simulated.InterestRate, row.Actual.InterestRate,
			row.Simulated.ExchangeRate, row.Actual.ExchangeRate,
			status,
		)
	}

	summary := result.ConvergenceSummary()
	fmt.Fprintf(w, "\n--- Convergence ---\n")
	_, _ = p.Fprintf(w, "Solved periods: %d, converged: %d (%.1f%%)\n", summary.Periods, summary.Converged, 100*summary.Share)
	if len(summary.FailedYears) > 0 {
		years := make([]string, len(summary.FailedYears))
		for i, y := range summary.FailedYears {
			years[i] = strconv.Itoa(y)
		}
		fmt.Fprintf(w, "Fallback years: %s\n", strings.Join(years, ", "))
	}

	fits := result.Compare()
	if len(fits) == 0 {
		return
	}
	fmt.Fprintf(w, "\n--- Fit against observations ---\n")
	fmt.Fprintf(w, "Variable     | RMSE     | MAE      | Bias     | Correlation\n")
	fmt.Fprintf(w, "________     | ____     | ___      | ____     | ___________\n")
	for _, f := range fits {
		corr := "n/a"
		if f.Correlation != nil {
			corr = p.Sprintf("%.3f", *f.Correlation)
		}
		_, _ = p.Fprintf(w, "%-12s | %8.3f | %8.3f | %8.3f | %s\n", f.Variable, f.RMSE, f.MAE, f.Bias, corr)
	}
}

// CsvFormat outputs in comma-separated value format.
func CsvFormat(result *simulation.Result) {
	fmt.Print(CsvString(result))
}

var csvHeader = []string{
	"year", "period", "seeded", "converged",
	"growth", "growth (observed)",
	"inflation", "inflation (observed)",
	"rate", "rate (observed)",
	"exchange rate", "exchange rate (observed)",
	"cpi", "real exchange rate", "trend", "real rate", "real rate gap",
	"real exchange rate gap", "rate differential", "inflation differential",
	"shock is", "shock pc", "shock mp", "shock uip",
	"iterations",
}

// CsvString renders the per-period table as CSV.
func CsvString(result *simulation.Result) string {
	var b strings.Builder
	for i, h := range csvHeader {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, `"%s"`, h)
	}
	b.WriteByte('\n')

	for _, row := range result.Rows() {
		s := row.Simulated
		fmt.Fprintf(&b, `"%d","%d","%t","%t"`, row.Year, row.Period, row.Seeded, s.Converged)
		for _, v := range []float64{
			s.OutputGrowth, row.Actual.OutputGrowth,
			s.Inflation, row.Actual.Inflation,
			s.InterestRate, row.Actual.InterestRate,
			s.ExchangeRate, row.Actual.ExchangeRate,
			s.CPI, s.RealExchangeRate, row.Trend, s.RealRate, s.RealRateGap,
			s.RealExchangeRateGap, s.RateDifferential, s.InflationDifferential,
			row.Shock.IS, row.Shock.PC, row.Shock.MP, row.Shock.UIP,
		} {
			fmt.Fprintf(&b, `,"%.4f"`, v)
		}
		fmt.Fprintf(&b, `,"%d"`, row.Iterations)
		b.WriteByte('\n')
	}
	return b.String()
}
