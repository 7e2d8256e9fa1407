package backtest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ReportGenerator generates backtest reports.
type ReportGenerator struct {
	result Result
}

// NewReportGenerator creates a new report generator.
func NewReportGenerator(result Result) *ReportGenerator {
	return &ReportGenerator{result: result}
}

// GenerateConsoleReport prints a formatted report to console.
func (r *ReportGenerator) GenerateConsoleReport() string {
	var sb strings.Builder
	res := r.result
	m := res.Metrics

	sb.WriteString("\n")
	sb.WriteString("═══════════════════════════════════════════════════════════════════════════════\n")
	sb.WriteString("                           BACKTEST RESULTS                                     \n")
	sb.WriteString("═══════════════════════════════════════════════════════════════════════════════\n")
	sb.WriteString("\n")

	sb.WriteString("CONFIGURATION\n")
	sb.WriteString("─────────────────────────────────────────────────────────────────────────────\n")
	sb.WriteString(fmt.Sprintf("Symbol:           %s\n", res.Symbol))
	sb.WriteString(fmt.Sprintf("Start Date:       %s\n", res.StartTime.Format("2006-01-02")))
	sb.WriteString(fmt.Sprintf("End Date:         %s\n", res.EndTime.Format("2006-01-02")))
	sb.WriteString(fmt.Sprintf("Initial Capital:  $%.2f\n", res.InitialCapital))
	sb.WriteString("\n")

	sb.WriteString("OVERALL PERFORMANCE\n")
	sb.WriteString("─────────────────────────────────────────────────────────────────────────────\n")
	sb.WriteString(fmt.Sprintf("Final Capital:    $%.2f\n", res.FinalCapital))
	sb.WriteString(fmt.Sprintf("Total Return:     $%.2f (%.2f%%)\n", m.TotalReturn, m.TotalReturnPct))
	sb.WriteString("\n")

	sb.WriteString("TRADE STATISTICS\n")
	sb.WriteString("─────────────────────────────────────────────────────────────────────────────\n")
	sb.WriteString(fmt.Sprintf("Total Trades:     %d\n", m.TotalTrades))
	sb.WriteString(fmt.Sprintf("Winning Trades:   %d\n", m.WinningTrades))
	sb.WriteString(fmt.Sprintf("Losing Trades:    %d\n", m.LosingTrades))
	sb.WriteString(fmt.Sprintf("Win Rate:         %s\n", formatNullablePct(m.WinRate)))
	sb.WriteString(fmt.Sprintf("Avg Duration:     %s\n", r.formatDuration(m.AvgTradeDuration)))
	sb.WriteString("\n")

	sb.WriteString("PROFIT METRICS\n")
	sb.WriteString("─────────────────────────────────────────────────────────────────────────────\n")
	sb.WriteString(fmt.Sprintf("Gross Profit:     $%.2f\n", m.GrossProfit))
	sb.WriteString(fmt.Sprintf("Gross Loss:       $%.2f\n", m.GrossLoss))
	sb.WriteString(fmt.Sprintf("Profit Factor:    %s\n", formatNullable(m.ProfitFactor)))
	sb.WriteString(fmt.Sprintf("Total Commission: $%.2f\n", m.TotalCommission))
	sb.WriteString("\n")

	sb.WriteString("RISK METRICS\n")
	sb.WriteString("─────────────────────────────────────────────────────────────────────────────\n")
	sb.WriteString(fmt.Sprintf("Max Drawdown:     $%.2f (%.2f%%)\n", m.MaxDrawdown, m.MaxDrawdownPct))
	sb.WriteString(fmt.Sprintf("Sharpe Ratio:     %s\n", formatNullable(m.SharpeRatio)))
	sb.WriteString("\n")

	sb.WriteString("═══════════════════════════════════════════════════════════════════════════════\n")

	return sb.String()
}

// GenerateTradeLog creates a detailed trade-by-trade log.
func (r *ReportGenerator) GenerateTradeLog() string {
	var sb strings.Builder

	sb.WriteString("\n")
	sb.WriteString("DETAILED TRADE LOG\n")
	sb.WriteString("═══════════════════════════════════════════════════════════════════════════════\n")
	sb.WriteString("\n")

	if len(r.result.Trades) == 0 {
		sb.WriteString("No trades executed\n")
		return sb.String()
	}

	for i, trade := range r.result.Trades {
		sb.WriteString(fmt.Sprintf("Trade #%d\n", i+1))
		sb.WriteString("─────────────────────────────────────────────────────────────────────────────\n")
		sb.WriteString(fmt.Sprintf("Symbol:      %s\n", trade.Symbol))
		sb.WriteString(fmt.Sprintf("Side:        %s\n", trade.Side))
		sb.WriteString(fmt.Sprintf("Entry:       %s @ $%.2f (qty: %.2f)\n",
			trade.EntryTime.Format("2006-01-02 15:04:05"), trade.EntryPrice, trade.Qty))
		sb.WriteString(fmt.Sprintf("Exit:        %s @ $%.2f\n",
			trade.ExitTime.Format("2006-01-02 15:04:05"), trade.ExitPrice))
		sb.WriteString(fmt.Sprintf("Duration:    %s\n", r.formatDuration(trade.HoldTime())))
		sb.WriteString(fmt.Sprintf("Net P&L:     $%.2f\n", trade.NetPnL))
		sb.WriteString(fmt.Sprintf("Commission:  $%.2f\n", trade.Commission))
		sb.WriteString(fmt.Sprintf("Exit Reason: %s\n", trade.ExitReason))

		if trade.IsWinningTrade() {
			sb.WriteString("Result:      WIN\n")
		} else {
			sb.WriteString("Result:      LOSS\n")
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// SaveToFile saves the report to a file.
func (r *ReportGenerator) SaveToFile(outputDir string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("backtest_%s_%s.txt", r.result.Symbol, timestamp)
	path := filepath.Join(outputDir, filename)

	var report strings.Builder
	report.WriteString(r.GenerateConsoleReport())
	report.WriteString("\n")
	report.WriteString(r.GenerateTradeLog())

	if err := os.WriteFile(path, []byte(report.String()), 0644); err != nil {
		return fmt.Errorf("failed to write report file: %w", err)
	}
	return nil
}

func (r *ReportGenerator) formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	if hours < 24 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	days := hours / 24
	hours = hours % 24
	return fmt.Sprintf("%dd %dh", days, hours)
}

func formatNullable(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", *v)
}

func formatNullablePct(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", *v)
}
