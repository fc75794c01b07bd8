package export

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/de-tools/spend-atlas/pkg/models/domain"
)

type TableConfig struct {
	IDWidth     int
	NameWidth   int
	AmountWidth int
	ChangeWidth int
}

func DefaultTableConfig() TableConfig {
	return TableConfig{
		IDWidth:     12,
		NameWidth:   40,
		AmountWidth: 20,
		ChangeWidth: 10,
	}
}

type Reporter struct {
	writer io.Writer
	config TableConfig
}

func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{
		writer: writer,
		config: DefaultTableConfig(),
	}
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 3 {
		return string(r[:width])
	}
	return string(r[:width-3]) + "..."
}

func (c *Reporter) Handle(report *domain.Report) error {
	funcMap := template.FuncMap{
		"formatRow": func(id, name string, base, comparison, change interface{}) string {
			return fmt.Sprintf("| %-*s | %-*s | %*v | %*v | %*v |",
				c.config.IDWidth, truncate(id, c.config.IDWidth),
				c.config.NameWidth, truncate(name, c.config.NameWidth),
				c.config.AmountWidth, base,
				c.config.AmountWidth, comparison,
				c.config.ChangeWidth, change)
		},
		"separator": func() string {
			return fmt.Sprintf("+%s+%s+%s+%s+%s+",
				strings.Repeat("-", c.config.IDWidth+2),
				strings.Repeat("-", c.config.NameWidth+2),
				strings.Repeat("-", c.config.AmountWidth+2),
				strings.Repeat("-", c.config.AmountWidth+2),
				strings.Repeat("-", c.config.ChangeWidth+2))
		},
		"amount": func(v float64) string {
			return fmt.Sprintf("%.2f", v)
		},
		"pct": func(v float64) string {
			return fmt.Sprintf("%.2f%%", v)
		},
	}

	tmpl := `
{{.Title}}: {{.BaseYear}} vs {{.ComparisonYear}}

Top recipients: {{.Request.TopN}}, decline threshold: {{printf "%.2f" .Request.DeclinePct}}%
Declining recipients: {{len .Results}}
Total {{.BaseYear}}: {{.Currency}} {{amount .TotalBase}}
Total {{.ComparisonYear}}: {{.Currency}} {{amount .TotalCompared}}

{{separator}}
{{formatRow "ID" "Name" .BaseYear.String .ComparisonYear.String "Change"}}
{{separator}}
{{range .Results}}{{formatRow .ID .Name (amount .BaseAmount) (amount .ComparisonAmount) (pct .PercentChange)}}
{{end}}{{separator}}
`

	t, err := template.New("report").Funcs(funcMap).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return t.Execute(c.writer, report)
}
