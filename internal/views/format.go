package views

import (
	"fmt"
	"math"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// RupeeSymbol prefixes every currency string shown to the user.
const RupeeSymbol = "₹"

var printer = message.NewPrinter(language.English)

// FormatRupees renders an amount as "₹ 1,234,567", rounded to whole rupees.
func FormatRupees(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		amount = 0
	}
	return RupeeSymbol + " " + printer.Sprintf("%d", int64(math.RoundToEven(amount)))
}

// FormatRupeesInt is FormatRupees for whole-rupee values.
func FormatRupeesInt(amount int64) string {
	return RupeeSymbol + " " + printer.Sprintf("%d", amount)
}

// FormatPercent renders an annual rate such as 8.5 as "8.50%".
func FormatPercent(rate float64) string {
	return fmt.Sprintf("%.2f%%", rate)
}

// Milliseconds truncates a duration to whole milliseconds for the status bar.
func Milliseconds(d time.Duration) int64 {
	return max(d.Milliseconds(), 0)
}

// FormatMillis renders a duration as "123 ms".
func FormatMillis(d time.Duration) string {
	return fmt.Sprintf("%d ms", Milliseconds(d))
}

func formatDate(t time.Time) string {
	return t.Format("Jan 2, 2006")
}

// timeAgo describes when an analysis was created relative to now.
func timeAgo(t, now time.Time) string {
	duration := now.Sub(t)

	switch {
	case duration < time.Minute:
		return "just now"
	case duration < time.Hour:
		mins := int(duration.Minutes())
		if mins == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", mins)
	case duration < 24*time.Hour:
		hours := int(duration.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	case duration < 7*24*time.Hour:
		days := int(duration.Hours() / 24)
		if days == 1 {
			return "yesterday"
		}
		return fmt.Sprintf("%d days ago", days)
	default:
		return formatDate(t)
	}
}

// scoreBand buckets an investment score for badge styling.
func scoreBand(score int) string {
	switch {
	case score >= 75:
		return "high"
	case score >= 40:
		return "medium"
	default:
		return "low"
	}
}

func truncate(s string, length int) string {
	runes := []rune(strings.TrimSpace(s))
	if len(runes) <= length {
		return string(runes)
	}
	return string(runes[:length-3]) + "..."
}
