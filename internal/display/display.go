// Package display renders qinter output for the terminal: explanation
// panels, pack listings, search results and status reports.
package display

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"qinter/internal/client"
	"qinter/internal/config"
	"qinter/internal/explain"
	"qinter/internal/manager"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#8BC34A")).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#8BC34A"))

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#2196F3"))

	descStyle = lipgloss.NewStyle().
			Width(76).
			PaddingLeft(1)

	suggestionStyle = lipgloss.NewStyle().
			PaddingLeft(2)

	codeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f2f2f2")).
			Background(lipgloss.Color("#1a2536")).
			Padding(0, 1).
			MarginLeft(2)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6b7280")).
			Italic(true)

	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e53935")).
			Bold(true)

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#8BC34A")).
		Bold(true)
)

// Explanation renders a rendered explanation as a terminal panel, honoring
// the display limits from settings.
func Explanation(e *explain.Explanation, display config.DisplayConfig) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(e.Title))
	b.WriteString("\n\n")
	b.WriteString(descStyle.Render(e.Description))
	b.WriteString("\n")

	suggestions := e.Suggestions
	if display.MaxSuggestions > 0 && len(suggestions) > display.MaxSuggestions {
		suggestions = suggestions[:display.MaxSuggestions]
	}
	if len(suggestions) > 0 {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render("Suggestions"))
		b.WriteString("\n")
		for i, s := range suggestions {
			b.WriteString(suggestionStyle.Render(fmt.Sprintf("%d. %s", i+1, s)))
			b.WriteString("\n")
		}
	}

	examples := e.Examples
	if display.MaxExamples > 0 && len(examples) > display.MaxExamples {
		examples = examples[:display.MaxExamples]
	}
	if len(examples) > 0 {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render("Examples"))
		b.WriteString("\n")
		for _, ex := range examples {
			b.WriteString(suggestionStyle.Render(ex.Description))
			b.WriteString("\n")
			b.WriteString(codeStyle.Render(strings.TrimRight(ex.Code, "\n")))
			b.WriteString("\n")
		}
	}

	if display.ShowPackInfo {
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render(fmt.Sprintf("from %s %s by %s",
			e.Source.PackName, e.Source.PackVersion, e.Source.PackAuthor)))
		b.WriteString("\n")
	}
	return b.String()
}

// NoExplanation renders the fallback line for errors no rule matched.
func NoExplanation(category string) string {
	return mutedStyle.Render(fmt.Sprintf("no explanation available for %s", category))
}

// InstalledPacks renders the local pack listing.
func InstalledPacks(packs []manager.InstalledPack, detailed bool) string {
	if len(packs) == 0 {
		return mutedStyle.Render("no packs installed — try 'qinter search <topic>'") + "\n"
	}

	var b strings.Builder
	b.WriteString(sectionStyle.Render(fmt.Sprintf("Installed packs (%d)", len(packs))))
	b.WriteString("\n")
	for _, p := range packs {
		b.WriteString(fmt.Sprintf("  %s %s — %s\n",
			okStyle.Render(p.Name), p.Version, p.Description))
		if detailed {
			b.WriteString(mutedStyle.Render(fmt.Sprintf("    author: %s  rules: %d  targets: %s\n",
				p.Author, p.Rules, strings.Join(p.Targets, ", "))))
		}
	}
	return b.String()
}

// SearchResults renders registry search output.
func SearchResults(query string, results []client.PackSummary) string {
	if len(results) == 0 {
		return mutedStyle.Render(fmt.Sprintf("no packs matching %q", query)) + "\n"
	}

	var b strings.Builder
	b.WriteString(sectionStyle.Render(fmt.Sprintf("Packs matching %q (%d)", query, len(results))))
	b.WriteString("\n")
	for _, r := range results {
		b.WriteString(fmt.Sprintf("  %s %s — %s %s\n",
			okStyle.Render(r.Name), r.Version, r.Description,
			mutedStyle.Render(fmt.Sprintf("(%d downloads)", r.Downloads))))
	}
	return b.String()
}

// PackInfo renders the registry's detailed pack view.
func PackInfo(info *client.PackInfo) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s %s", info.Name, info.Version)))
	b.WriteString("\n\n")
	b.WriteString(descStyle.Render(info.Description))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("  author:    %s\n", info.Author))
	b.WriteString(fmt.Sprintf("  license:   %s\n", info.License))
	b.WriteString(fmt.Sprintf("  downloads: %d\n", info.Downloads))
	if len(info.Tags) > 0 {
		b.WriteString(fmt.Sprintf("  tags:      %s\n", strings.Join(info.Tags, ", ")))
	}
	if info.Homepage != "" {
		b.WriteString(fmt.Sprintf("  homepage:  %s\n", info.Homepage))
	}
	return b.String()
}

// Statistics renders the engine's loaded-state summary.
func Statistics(stats explain.Statistics) string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render("Explanation engine"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  packs:      %d\n", stats.Packs))
	b.WriteString(fmt.Sprintf("  rules:      %d\n", stats.Rules))
	b.WriteString(fmt.Sprintf("  categories: %s\n", strings.Join(stats.Categories, ", ")))
	if len(stats.ValidationErrors) > 0 {
		b.WriteString(errStyle.Render(fmt.Sprintf("  %d pack(s) failed to load:", len(stats.ValidationErrors))))
		b.WriteString("\n")
		for _, e := range stats.ValidationErrors {
			b.WriteString(mutedStyle.Render("    " + e))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// Check renders one doctor check line.
func Check(name string, ok bool, detail string) string {
	mark := okStyle.Render("ok")
	if !ok {
		mark = errStyle.Render("FAIL")
	}
	if detail != "" {
		detail = " " + mutedStyle.Render("("+detail+")")
	}
	return fmt.Sprintf("  [%s] %s%s\n", mark, name, detail)
}
