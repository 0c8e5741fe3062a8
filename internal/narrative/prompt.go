// Package narrative builds the analysis prompt and asks a chat-completion
// model to write the trading commentary.
package narrative

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"SignalSG/internal/calculator"
	"SignalSG/internal/model"
)

// DefaultPersona conditions tone only; the facts requested live in the Template.
const DefaultPersona = "You are a professional crypto analyst with expertise in technical analysis and swing trading. " +
	"You provide clear, actionable advice with a friendly Singlish touch for Singapore traders."

// DefaultSections is the commentary structure requested from the model.
var DefaultSections = []string{
	"**Support and Resistance Zones**: Based on current price levels",
	"**Entry Strategy**: Best entry points for swing trading",
	"**Stop Loss**: Recommended stop loss levels (percentage and price)",
	"**Take Profit**: Target profit levels with realistic expectations",
	"**Risk/Reward Ratio**: Calculate potential R:R for the trade",
	"**Market Sentiment**: Brief assessment of current market conditions",
	"**Swing Trading Summary**: 3-sentence summary for quick decision making",
}

// Template is the single prompt layout used for every analysis.
type Template struct {
	Audience  string   // who the analysis is for
	Style     string   // tone instruction inside the prompt body
	Sections  []string // numbered items the model must cover
	WordLimit int
}

// DefaultTemplate returns the template for Singapore-based swing traders.
func DefaultTemplate() Template {
	return Template{
		Audience:  "a Singapore-based swing trader",
		Style:     "a conversational Singlish tone",
		Sections:  DefaultSections,
		WordLimit: 400,
	}
}

// DisplayName turns an asset id like "bitcoin-cash" into "Bitcoin Cash".
func DisplayName(assetID string) string {
	return cases.Title(language.Und).String(strings.ReplaceAll(assetID, "-", " "))
}

// BuildPrompt renders the user prompt for ticker. history may be nil.
func (t Template) BuildPrompt(ticker string, snap model.PriceSnapshot, assetID string, history *model.HistoryStats) string {
	upper := strings.ToUpper(strings.TrimSpace(ticker))
	primary := strings.ToUpper(snap.PrimaryCurrency)
	secondary := strings.ToUpper(snap.SecondaryCurrency)

	var b strings.Builder
	fmt.Fprintf(&b, "Analyze the cryptocurrency %s for %s.\n\n", upper, t.Audience)
	b.WriteString("Current Market Data:\n")
	fmt.Fprintf(&b, "- Coin: %s (%s)\n", DisplayName(assetID), upper)
	fmt.Fprintf(&b, "- Current Price: %s%.4f %s (%s%.4f %s)\n",
		model.CurrencyPrefix(snap.PrimaryCurrency), snap.Primary, primary,
		model.CurrencyPrefix(snap.SecondaryCurrency), snap.Secondary, secondary)
	fmt.Fprintf(&b, "- 24h Change: %+.2f%%\n", snap.Change24h)
	if history != nil {
		fmt.Fprintf(&b, "- %d-day Range: %.4f - %.4f %s\n", history.Days, history.Low, history.High, primary)
		fmt.Fprintf(&b, "- %d-day Average: %.4f %s (price at %.0f%% of range)\n", history.Days, history.Average, primary, history.Position*100)
		if history.HasRSI {
			fmt.Fprintf(&b, "- RSI(%d): %.1f\n", calculator.RSIPeriod, history.RSI)
		}
	}

	fmt.Fprintf(&b, "\nPlease provide analysis in %s and include:\n\n", t.Style)
	for i, s := range t.Sections {
		fmt.Fprintf(&b, "%d. %s\n", i+1, s)
	}

	b.WriteString("\n")
	if t.WordLimit > 0 {
		fmt.Fprintf(&b, "Keep the response under %d words. ", t.WordLimit)
	}
	fmt.Fprintf(&b, "Focus on practical, actionable advice for %s.", t.Audience)
	return b.String()
}
