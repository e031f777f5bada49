package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/fatih/color"

	"ideadist.dev/cli/internal/core/domain"
	configdomain "ideadist.dev/cli/internal/core/domain/config"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	warn       = color.New(color.FgYellow)
)

// printer writes human readable command output
type printer struct {
	out io.Writer
}

func newPrinter(out io.Writer) *printer {
	return &printer{out: out}
}

func (p *printer) title(s string) {
	fmt.Fprintln(p.out, titleStyle.Render(s))
}

func (p *printer) field(label, value string) {
	fmt.Fprintf(p.out, "  %s %s\n", labelStyle.Render(label), value)
}

func (p *printer) warning(format string, args ...interface{}) {
	warn.Fprintf(p.out, "Warning: "+format+"\n", args...)
}

func (p *printer) lines(values []string) {
	for _, v := range values {
		fmt.Fprintln(p.out, v)
	}
}

// result prints the summary of a completed acquisition
func (p *printer) result(r *domain.AcquisitionResult, patterns []string) {
	p.title("Distribution ready")
	p.field("coordinate", r.Coordinate.String())
	p.field("archive", r.Distribution.ArchivePath)
	p.field("directory", r.Distribution.Directory)
	if r.SourcesPath != "" {
		p.field("sources", r.SourcesPath)
	} else {
		p.field("sources", "(none)")
	}
	p.field("descriptor", r.DescriptorPath)

	counts := make([]string, 0, len(r.Descriptor.Configurations))
	for _, conf := range r.Descriptor.Configurations {
		counts = append(counts, fmt.Sprintf("%s=%d", conf, len(r.Descriptor.ArtifactsIn(conf))))
	}
	p.field("artifacts", strings.Join(counts, " "))
	for i, pattern := range patterns {
		label := ""
		if i == 0 {
			label = "patterns"
		}
		p.field(label, pattern)
	}

	if r.Request.DownloadSources && r.SourcesPath == "" {
		p.warning("sources archive for %s is not available", r.Coordinate.Module)
	}
}

// snapshot renders the merged configuration with the source of every value
func (p *printer) snapshot(snap configdomain.Snapshot) {
	keys := snap.Keys()
	sort.Strings(keys)

	rows := make([][]string, 0, len(keys))
	for _, key := range keys {
		e := snap[key]
		source := e.Source
		if e.SourcePath != "" && e.SourcePath != e.Source {
			source += " (" + e.SourcePath + ")"
		}
		rows = append(rows, []string{key, formatValue(e.Value), source})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("KEY", "VALUE", "SOURCE").
		Rows(rows...)
	fmt.Fprintln(p.out, t.String())
}

func formatValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return "(not set)"
	case []string:
		return strings.Join(val, ",")
	case []interface{}:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			parts = append(parts, fmt.Sprint(item))
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(val)
	}
}
