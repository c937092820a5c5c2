// Package render draws a read-only text projection of the story map grid.
// It reads a store.View and never feeds anything back into the store.
package render

import (
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"

	"storymap/internal/model"
	"storymap/internal/store"
)

const backlogLabel = "Unscheduled"

type Options struct {
	CardWidth int
	Color     bool
}

type styles struct {
	journey lipgloss.Style
	feature lipgloss.Style
	story   lipgloss.Style
	tech    lipgloss.Style
	release lipgloss.Style
	empty   lipgloss.Style
}

func newStyles(r *lipgloss.Renderer, width int) styles {
	card := r.NewStyle().
		Width(width - 2).
		Border(lipgloss.RoundedBorder())
	return styles{
		journey: r.NewStyle().Bold(true).Padding(0, 1).Foreground(lipgloss.Color("63")),
		feature: card.BorderForeground(lipgloss.Color("63")),
		story:   card.BorderForeground(lipgloss.Color("245")),
		tech:    card.BorderForeground(lipgloss.Color("208")),
		release: r.NewStyle().Bold(true).Underline(true),
		empty:   r.NewStyle().Width(width),
	}
}

type column struct {
	journeyID string
	feature   *model.Entity
}

// Grid renders journeys across the top, their features beneath as columns, and
// one row of story cells per release (stories without a release last).
func Grid(w io.Writer, v store.View, opts Options) error {
	if opts.CardWidth < 8 {
		opts.CardWidth = 20
	}
	r := lipgloss.NewRenderer(w)
	if opts.Color {
		r.SetColorProfile(termenv.ANSI256)
	} else {
		r.SetColorProfile(termenv.Ascii)
	}
	st := newStyles(r, opts.CardWidth)

	featuresByJourney := map[string][]model.Entity{}
	for _, f := range v.Features {
		featuresByJourney[f.JourneyID] = append(featuresByJourney[f.JourneyID], f)
	}

	var cols []column
	var header []string
	for _, j := range v.Journeys {
		fs := featuresByJourney[j.ID]
		span := len(fs)
		if span == 0 {
			span = 1
			cols = append(cols, column{journeyID: j.ID})
		}
		for i := range fs {
			cols = append(cols, column{journeyID: j.ID, feature: &fs[i]})
		}
		header = append(header, st.journey.Width(span*opts.CardWidth).Render(clip(j.Name, span*opts.CardWidth-2)))
	}

	var rows []string
	if name := strings.TrimSpace(v.Project.Name); name != "" {
		rows = append(rows, st.release.Render(name))
	}
	rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, header...))

	featureRow := make([]string, 0, len(cols))
	for _, c := range cols {
		if c.feature == nil {
			featureRow = append(featureRow, st.empty.Render(""))
			continue
		}
		featureRow = append(featureRow, st.feature.Render(clip(c.feature.Name, opts.CardWidth-2)))
	}
	rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, featureRow...))

	for _, rel := range releaseRows(v.Releases) {
		rows = append(rows, st.release.Render(rel.label))
		cells := make([]string, 0, len(cols))
		for _, c := range cols {
			cells = append(cells, storyCell(st, opts.CardWidth, v.Stories, c, rel.id))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}

	_, err := io.WriteString(w, lipgloss.JoinVertical(lipgloss.Left, rows...)+"\n")
	return err
}

func storyCell(st styles, width int, stories []model.Entity, c column, releaseID string) string {
	if c.feature == nil {
		return st.empty.Render("")
	}
	var cards []string
	for _, s := range stories {
		if s.FeatureID != c.feature.ID || s.ReleaseID != releaseID {
			continue
		}
		style := st.story
		name := s.Name
		if s.StoryType == model.StoryTypeTechRequirement {
			style = st.tech
			name = "[T] " + name
		}
		cards = append(cards, style.Render(clip(name, width-2)))
	}
	if len(cards) == 0 {
		return st.empty.Render("")
	}
	return lipgloss.JoinVertical(lipgloss.Left, cards...)
}

type releaseRow struct {
	id    string
	label string
}

// releaseRows orders releases by target date (undated after dated, ties in
// load order) and appends the unscheduled row.
func releaseRows(releases []model.Entity) []releaseRow {
	rs := append([]model.Entity{}, releases...)
	sort.SliceStable(rs, func(i, j int) bool {
		a, b := rs[i].TargetDate, rs[j].TargetDate
		switch {
		case a != nil && b != nil:
			return a.Before(*b)
		case a != nil:
			return true
		default:
			return false
		}
	})
	out := make([]releaseRow, 0, len(rs)+1)
	for _, r := range rs {
		label := r.Name
		if r.TargetDate != nil {
			label += " (" + r.TargetDate.Format("2006-01-02") + ")"
		}
		out = append(out, releaseRow{id: r.ID, label: label})
	}
	return append(out, releaseRow{label: backlogLabel})
}

func clip(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if xansi.StringWidth(s) <= width {
		return s
	}
	return xansi.Truncate(s, width, "…")
}
