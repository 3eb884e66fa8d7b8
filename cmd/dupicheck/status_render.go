package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"dupicheck/internal/api"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const (
	statusLabelWidth = 16
	statusIndent     = "  "
)

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	statusText := statusKindLabel(kind)
	if message != "" {
		statusText = fmt.Sprintf("[%s] %s", statusText, message)
	} else {
		statusText = fmt.Sprintf("[%s]", statusText)
	}
	base := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", statusText)
	if colorize {
		if color := statusKindColor(kind); color != "" {
			return color + base + ansiReset
		}
	}
	return base
}

func statusKindLabel(kind statusKind) string {
	switch kind {
	case statusOK:
		return "OK"
	case statusWarn:
		return "WARN"
	case statusError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func statusKindColor(kind statusKind) string {
	switch kind {
	case statusOK:
		return ansiGreen
	case statusWarn:
		return ansiYellow
	case statusError:
		return ansiRed
	case statusInfo:
		return ansiBlue
	default:
		return ""
	}
}

func renderSectionHeader(title string, colorize bool) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(line))
	if colorize {
		line = ansiBlue + line + ansiReset
		rule = ansiBlue + rule + ansiReset
	}
	return []string{line, rule}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// statusReportLines renders the store and review sections of a status report.
func statusReportLines(report api.StatusReport, colorize bool) []string {
	lines := renderSectionHeader("Fingerprint store", colorize)
	if !report.StoreExists {
		lines = append(lines, renderStatusLine("Store", statusWarn, "not created yet: "+report.StorePath, colorize))
	} else {
		s := report.Summary
		placeholderKind := statusInfo
		if s.Placeholders > 0 {
			placeholderKind = statusWarn
		}
		lines = append(lines,
			renderStatusLine("Store", statusOK, report.StorePath, colorize),
			renderStatusLine("Size", statusInfo, formatBytes(s.SizeBytes), colorize),
			renderStatusLine("Records", statusInfo, formatCount(s.Records), colorize),
			renderStatusLine("Ignored files", statusInfo, formatCount(s.Ignored), colorize),
			renderStatusLine("Placeholders", placeholderKind, formatCount(s.Placeholders), colorize),
			renderStatusLine("Ignored pairs", statusInfo, formatCount(s.IgnoredPairs), colorize),
			renderStatusLine("Last updated", statusInfo, lastUpdated(s.LastUpdated), colorize),
		)
	}

	lines = append(lines, "")
	lines = append(lines, renderSectionHeader("Manual review", colorize)...)
	switch {
	case !report.ManualDirSeen:
		lines = append(lines, renderStatusLine("Review folder", statusInfo, "none", colorize))
	case report.PendingUnits > 0:
		msg := fmt.Sprintf("%s %s pending in %s", formatCount(report.PendingUnits), plural(report.PendingUnits, "folder", "folders"), report.ManualDir)
		lines = append(lines, renderStatusLine("Review folder", statusWarn, msg, colorize))
	default:
		lines = append(lines, renderStatusLine("Review folder", statusOK, "empty", colorize))
	}
	return lines
}

func lastUpdated(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return fmt.Sprintf("%s (%s)", t.Local().Format(time.DateTime), humanize.Time(t))
}
