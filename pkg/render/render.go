// Package render formats inventory listings for the terminal. Tables are
// the default; every listing can also be emitted as indented JSON for
// scripting.
package render

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/surgecloud/surge/pkg/driver"
)

var (
	colorBlue = lipgloss.Color("#3b82f6")
	colorDim  = lipgloss.Color("#6b7280")

	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(colorBlue)
	dimStyle    = lipgloss.NewStyle().Foreground(colorDim)
)

// JSON renders any listing as indented JSON with a trailing newline.
func JSON(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to render JSON: %w", err)
	}
	return string(data) + "\n", nil
}

// Clusters renders the cluster listing with node names per cluster.
func Clusters(clusters []driver.Cluster) string {
	rows := make([][]string, len(clusters))
	for i, c := range clusters {
		rows[i] = []string{c.Name, strings.Join(c.NodeNames(), ", ")}
	}
	return table([]string{"NAME", "NODES"}, rows)
}

// Images renders the image catalog.
func Images(images []driver.Image) string {
	rows := make([][]string, len(images))
	for i, img := range images {
		rows[i] = []string{img.ID, img.Name}
	}
	return table([]string{"ID", "NAME"}, rows)
}

// Locations renders the location catalog.
func Locations(locations []driver.Location) string {
	rows := make([][]string, len(locations))
	for i, loc := range locations {
		rows[i] = []string{loc.ID, loc.Name, loc.Country}
	}
	return table([]string{"ID", "NAME", "COUNTRY"}, rows)
}

// Sizes renders the size catalog. extras adds the driver-specific extra
// columns, which vary per driver and are hidden by default.
func Sizes(sizes []driver.Size, extras bool) string {
	headers := []string{"ID", "NAME", "CPUS", "RAM MB", "DISKS GB"}
	if extras {
		headers = append(headers, "EXTRA")
	}
	rows := make([][]string, len(sizes))
	for i, size := range sizes {
		row := []string{
			size.ID,
			size.Name,
			fmt.Sprintf("%d", size.CPUs),
			fmt.Sprintf("%d", size.RAMMb),
			intList(size.Disks),
		}
		if extras {
			row = append(row, extraField(size.Extra))
		}
		rows[i] = row
	}
	return table(headers, rows)
}

// Nodes renders the node listing. passwords adds the initial root password
// column, present only for nodes created in the current invocation.
func Nodes(nodes []driver.Node, passwords bool) string {
	headers := []string{"NAME", "CLUSTER", "STATE", "PUBLIC IPS", "PRIVATE IPS", "SIZE"}
	if passwords {
		headers = append(headers, "PASSWORD")
	}
	rows := make([][]string, len(nodes))
	for i, node := range nodes {
		row := []string{
			node.Name,
			node.ClusterName,
			string(node.State),
			strings.Join(node.PublicIPs, ", "),
			strings.Join(node.PrivateIPs, ", "),
			node.Size.Name,
		}
		if passwords {
			row = append(row, node.Extra["password"])
		}
		rows[i] = row
	}
	return table(headers, rows)
}

// table lays out rows under a styled header, sized to the widest cell per
// column.
func table(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(formatRow(headers, widths)))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(strings.Repeat("─", rowWidth(widths))))
	b.WriteString("\n")
	for _, row := range rows {
		b.WriteString(formatRow(row, widths))
		b.WriteString("\n")
	}
	if len(rows) == 0 {
		b.WriteString(dimStyle.Render("(none)"))
		b.WriteString("\n")
	}
	return b.String()
}

func formatRow(cells []string, widths []int) string {
	parts := make([]string, len(cells))
	for i, cell := range cells {
		parts[i] = fmt.Sprintf("%-*s", widths[i], cell)
	}
	return strings.TrimRight(strings.Join(parts, "  "), " ")
}

func rowWidth(widths []int) int {
	total := 2 * (len(widths) - 1)
	for _, w := range widths {
		total += w
	}
	return total
}

func intList(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("%d", v)
	}
	return strings.Join(parts, ", ")
}

func extraField(extra map[string]string) string {
	if len(extra) == 0 {
		return ""
	}
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+extra[k])
	}
	return strings.Join(parts, " ")
}
