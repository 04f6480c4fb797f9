// Package badge renders the repository evidence status as an embeddable
// SVG badge plus a metadata sidecar.
package badge

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/crovia/wedge/core/fsx"
	"github.com/crovia/wedge/core/jcs"
	"github.com/crovia/wedge/core/observation"
)

const SchemaID = "crovia.badge.v1"

const (
	colorGreen     = "#4c1"
	colorRed       = "#e05d44"
	colorPending   = "#9f9f9f"
	colorCertified = "#007ec6"
)

const svgTemplate = `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="20">
  <linearGradient id="b" x2="0" y2="100%%">
    <stop offset="0" stop-color="#bbb" stop-opacity=".1"/>
    <stop offset="1" stop-opacity=".1"/>
  </linearGradient>
  <clipPath id="a">
    <rect width="%d" height="20" rx="3" fill="#fff"/>
  </clipPath>
  <g clip-path="url(#a)">
    <path fill="#555" d="M0 0h%dv20H0z"/>
    <path fill="%s" d="M%d 0h%dv20H%dz"/>
    <path fill="url(#b)" d="M0 0h%dv20H0z"/>
  </g>
  <g fill="#fff" text-anchor="middle" font-family="DejaVu Sans,Verdana,Geneva,sans-serif" font-size="11">
    <text x="%d" y="15" fill="#010101" fill-opacity=".3">%s</text>
    <text x="%d" y="14">%s</text>
    <text x="%d" y="15" fill="#010101" fill-opacity=".3">%s</text>
    <text x="%d" y="14">%s</text>
  </g>
</svg>`

// Metadata describes a rendered badge.
type Metadata struct {
	Schema        string `json:"schema"`
	GeneratedAt   string `json:"generated_at"`
	Status        string `json:"status"`
	Reason        string `json:"reason"`
	Certified     bool   `json:"certified"`
	BadgeSVG      string `json:"badge_svg"`
	BadgeURL      string `json:"badge_url"`
	EmbedMarkdown string `json:"embed_markdown"`
	BadgeHash     string `json:"badge_hash"`
}

// Generate writes badge.svg and badge_metadata.json under dir and returns
// the metadata. Certified styling overrides the plain GREEN look.
func Generate(status observation.Status, reason observation.Reason, certified bool, dir string, now time.Time) (Metadata, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return Metadata{}, fmt.Errorf("create badge directory: %w", err)
	}

	color, value := appearance(status, certified)
	svg := renderSVG("crovia", value, color)

	svgPath := filepath.Join(dir, "badge.svg")
	if err := fsx.WriteFileAtomic(svgPath, []byte(svg), 0o600); err != nil {
		return Metadata{}, fmt.Errorf("write badge svg: %w", err)
	}

	meta := Metadata{
		Schema:        SchemaID,
		GeneratedAt:   now.UTC().Format(time.RFC3339),
		Status:        string(status),
		Reason:        string(reason),
		Certified:     certified,
		BadgeSVG:      svgPath,
		BadgeURL:      fmt.Sprintf("https://img.shields.io/badge/crovia-%s-%s.svg", strings.ReplaceAll(value, " ", "_"), strings.TrimPrefix(color, "#")),
		EmbedMarkdown: fmt.Sprintf("[![Crovia Evidence](%s)](https://crovia.trust)", svgPath),
		BadgeHash:     jcs.Sum256Hex([]byte(svg))[:16],
	}
	encoded, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return Metadata{}, fmt.Errorf("encode badge metadata: %w", err)
	}
	encoded = append(encoded, '\n')
	if err := fsx.WriteFileAtomic(filepath.Join(dir, "badge_metadata.json"), encoded, 0o600); err != nil {
		return Metadata{}, fmt.Errorf("write badge metadata: %w", err)
	}
	return meta, nil
}

// ShieldsURL returns the shields.io equivalent of the local badge.
func ShieldsURL(status observation.Status, certified bool) string {
	switch {
	case certified:
		return "https://img.shields.io/badge/crovia-certified-blue.svg"
	case status == observation.StatusGreen:
		return "https://img.shields.io/badge/crovia-evidence-brightgreen.svg"
	default:
		return "https://img.shields.io/badge/crovia-no_evidence-red.svg"
	}
}

func appearance(status observation.Status, certified bool) (color, value string) {
	switch {
	case certified:
		return colorCertified, "certified"
	case status == observation.StatusGreen:
		return colorGreen, "evidence"
	case status == observation.StatusRed:
		return colorRed, "no evidence"
	default:
		return colorPending, "pending"
	}
}

func renderSVG(label, value, color string) string {
	labelWidth := len(label)*7 + 10
	valueWidth := len(value)*7 + 10
	width := labelWidth + valueWidth
	labelX := labelWidth / 2
	valueX := labelWidth + valueWidth/2
	return fmt.Sprintf(svgTemplate,
		width, width,
		labelWidth,
		color, labelWidth, valueWidth, labelWidth,
		width,
		labelX, label, labelX, label,
		valueX, value, valueX, value,
	)
}
