package presentation

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/goccy/go-json"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#999999", Dark: "#555555"})

	stageColors = map[string]lipgloss.AdaptiveColor{
		"Production": {Light: "#2E7D32", Dark: "#7CC47F"},
		"Staging":    {Light: "#B26A00", Dark: "#E8B04B"},
		"Archived":   {Light: "#777777", Dark: "#888888"},
	}
)

// Formatter handles output formatting
type Formatter struct {
	writer io.Writer
}

// NewFormatter creates a new formatter
func NewFormatter(writer io.Writer) *Formatter {
	return &Formatter{
		writer: writer,
	}
}

// FormatJSON writes v as indented JSON
func (f *Formatter) FormatJSON(v any) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// FormatVersions writes versions as JSON
func (f *Formatter) FormatVersions(versions []ModelVersionDTO) error {
	return f.FormatJSON(versions)
}

// FormatVersionTable writes versions as a VER/STAGE/ALIAS/CREATED/RUN_ID table
func (f *Formatter) FormatVersionTable(versions []ModelVersionDTO) error {
	_, err := fmt.Fprintln(f.writer, RenderVersionTable(versions))
	return err
}

// RenderVersionTable renders the version list. Versions without aliases show "-".
func RenderVersionTable(versions []ModelVersionDTO) string {
	rows := make([][]string, 0, len(versions))
	for _, v := range versions {
		rows = append(rows, []string{
			fmt.Sprintf("%d", v.Version),
			v.CurrentStage,
			aliasCell(v.Aliases),
			time.UnixMilli(v.CreationTimestamp).Format("2006-01-02 15:04:05"),
			v.RunID,
		})
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers("VER", "STAGE", "ALIAS", "CREATED", "RUN_ID").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 1 && row >= 0 && row < len(rows) {
				if c, ok := stageColors[rows[row][1]]; ok {
					return cellStyle.Foreground(c)
				}
			}
			return cellStyle
		}).
		String()
}

// FormatRunTable writes runs as a RUN_ID/NAME/STATUS/STARTED/METRICS table
func (f *Formatter) FormatRunTable(runs []RunDTO) error {
	_, err := fmt.Fprintln(f.writer, RenderRunTable(runs))
	return err
}

// RenderRunTable renders runs in the order given, metrics sorted by key.
func RenderRunTable(runs []RunDTO) string {
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, []string{
			r.RunID,
			r.RunName,
			r.Status,
			time.UnixMilli(r.StartTime).Format("2006-01-02 15:04:05"),
			metricsCell(r.Metrics),
		})
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers("RUN_ID", "NAME", "STATUS", "STARTED", "METRICS").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		String()
}

func metricsCell(metrics map[string]float64) string {
	if len(metrics) == 0 {
		return "-"
	}
	keys := make([]string, 0, len(metrics))
	for k := range metrics {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + strconv.FormatFloat(metrics[k], 'g', 4, 64)
	}
	return strings.Join(parts, " ")
}

func aliasCell(aliases []string) string {
	if len(aliases) == 0 {
		return "-"
	}
	return strings.Join(aliases, ",")
}
