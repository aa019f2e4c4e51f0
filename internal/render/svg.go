// Package render turns a finished statistics record into the shareable
// SVG card.
package render

import (
	"fmt"
	"html"
	"io"
	"os"
	"text/template"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/ntananh/github-stats/internal/domain"
)

const (
	barX     = 250
	barWidth = 480
	bioLimit = 50
)

type statCard struct {
	X, Y, Width, Height int
	Title, Value        string
}

type cardView struct {
	Name         string
	Login        string
	Bio          string
	AvatarURL    string
	Cards        []statCard
	NetLines     string
	LinesAdded   string
	LinesDeleted string
	AddWidth     int
	DelX         int
	DelWidth     int
	GeneratedOn  string
}

func buildView(stats *domain.AggregateStats, now time.Time) cardView {
	name := stats.Name
	if name == "" {
		name = stats.Login
	}
	bio := []rune(stats.Bio)
	bioText := string(bio)
	if len(bio) > bioLimit {
		bioText = string(bio[:bioLimit]) + "..."
	}

	// Split the bar proportionally between added and deleted lines.
	addWidth := 0
	if total := stats.LinesAdded + stats.LinesDeleted; total > 0 {
		addWidth = barWidth * stats.LinesAdded / total
	}

	comma := func(n int) string { return humanize.Comma(int64(n)) }
	return cardView{
		Name:      html.EscapeString(name),
		Login:     html.EscapeString(stats.Login),
		Bio:       html.EscapeString(bioText),
		AvatarURL: html.EscapeString(stats.AvatarURL),
		Cards: []statCard{
			{40, 180, 230, 90, "GitHub Age", stats.Age},
			{290, 180, 230, 90, "Repositories", comma(stats.Repos)},
			{540, 180, 220, 90, "Stars", comma(stats.Stars)},
			{40, 290, 230, 90, "Commits", comma(stats.Commits)},
			{290, 290, 230, 90, "Followers", comma(stats.Followers)},
			{540, 290, 220, 90, "Following", comma(stats.Following)},
		},
		NetLines:     comma(stats.NetLines),
		LinesAdded:   comma(stats.LinesAdded),
		LinesDeleted: comma(stats.LinesDeleted),
		AddWidth:     addWidth,
		DelX:         barX + addWidth,
		DelWidth:     barWidth - addWidth,
		GeneratedOn:  now.Format("2006-01-02"),
	}
}

// Render writes the SVG card for stats to w.
func Render(w io.Writer, stats *domain.AggregateStats, now time.Time) error {
	if err := cardTemplate.Execute(w, buildView(stats, now)); err != nil {
		return fmt.Errorf("render svg: %w", err)
	}
	return nil
}

// WriteFile renders the card into the file at path.
func WriteFile(path string, stats *domain.AggregateStats, now time.Time) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Render(f, stats, now); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

var cardTemplate = template.Must(template.New("card").Parse(`<?xml version="1.0" encoding="utf-8"?>
<svg width="800" height="500" viewBox="0 0 800 500" xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink">
  <style>
    @import url('https://fonts.googleapis.com/css2?family=Roboto:wght@300;400;700&amp;display=swap');
    * { font-family: 'Roboto', sans-serif; }
    .background { fill: #0d1117; }
    .card { fill: #161b22; rx: 10; ry: 10; }
    .stat-title { fill: #8b949e; font-size: 14px; }
    .stat-value { fill: #f0f6fc; font-size: 24px; font-weight: bold; }
    .user-name { fill: #f0f6fc; font-size: 28px; font-weight: bold; }
    .user-login { fill: #8b949e; font-size: 18px; }
    .user-bio { fill: #8b949e; font-size: 14px; }
    .stat-card { filter: drop-shadow(0px 4px 6px rgba(0, 0, 0, 0.1)); }
    .progress-bg { fill: #30363d; rx: 5; ry: 5; }
    .progress-fg-add { fill: #238636; rx: 5; ry: 5; }
    .progress-fg-del { fill: #da3633; rx: 5; ry: 5; }
    .legend-label { fill: #8b949e; font-size: 12px; }
  </style>
  <rect width="800" height="500" class="background"/>
  <rect x="40" y="40" width="720" height="120" class="card stat-card"/>
  <defs>
    <clipPath id="avatar-clip">
      <circle cx="100" cy="100" r="40"/>
    </clipPath>
  </defs>
{{- if .AvatarURL}}
  <image x="60" y="60" width="80" height="80" xlink:href="{{.AvatarURL}}" clip-path="url(#avatar-clip)"/>
{{- end}}
  <text x="160" y="85" class="user-name">{{.Name}}</text>
  <text x="160" y="110" class="user-login">@{{.Login}}</text>
  <text x="160" y="135" class="user-bio">{{.Bio}}</text>
{{- range .Cards}}
  <rect x="{{.X}}" y="{{.Y}}" width="{{.Width}}" height="{{.Height}}" class="card stat-card"/>
  <text x="{{.TitleX}}" y="{{.TitleY}}" class="stat-title">{{.Title}}</text>
  <text x="{{.TitleX}}" y="{{.ValueY}}" class="stat-value">{{.Value}}</text>
{{- end}}
  <rect x="40" y="400" width="720" height="80" class="card stat-card"/>
  <text x="60" y="425" class="stat-title">Lines of Code</text>
  <text x="60" y="455" class="stat-value">{{.NetLines}}</text>
  <rect x="250" y="435" width="480" height="20" class="progress-bg"/>
{{- if gt .AddWidth 0}}
  <rect x="250" y="435" width="{{.AddWidth}}" height="20" class="progress-fg-add"/>
{{- end}}
{{- if gt .DelWidth 0}}
  <rect x="{{.DelX}}" y="435" width="{{.DelWidth}}" height="20" class="progress-fg-del"/>
{{- end}}
  <circle cx="270" cy="470" r="5" class="progress-fg-add"/>
  <text x="280" y="474" class="legend-label">Additions: {{.LinesAdded}}</text>
  <circle cx="400" cy="470" r="5" class="progress-fg-del"/>
  <text x="410" y="474" class="legend-label">Deletions: {{.LinesDeleted}}</text>
  <text x="400" y="490" text-anchor="middle" class="legend-label">Generated on {{.GeneratedOn}}</text>
</svg>
`))

// TitleX and friends position a card's text relative to its frame.
func (c statCard) TitleX() int { return c.X + 20 }
func (c statCard) TitleY() int { return c.Y + 30 }
func (c statCard) ValueY() int { return c.Y + 65 }
