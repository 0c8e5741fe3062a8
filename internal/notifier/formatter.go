package notifier

import (
	"fmt"
	"strings"

	"SignalSG/internal/model"
)

// Formatter renders replies as Telegram Markdown.
type Formatter struct {
	BotUsername string
}

// NewFormatter creates a formatter whose footer credits botUsername.
func NewFormatter(botUsername string) *Formatter {
	if botUsername == "" {
		botUsername = "BotSignalSGBot"
	}
	return &Formatter{BotUsername: strings.TrimPrefix(botUsername, "@")}
}

var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")

// EscapeMarkdown escapes the characters legacy Telegram Markdown treats as
// entity delimiters.
func EscapeMarkdown(s string) string { return markdownEscaper.Replace(s) }

// displayTicker upper-cases and escapes a user-supplied ticker.
func displayTicker(ticker string) string {
	return EscapeMarkdown(strings.ToUpper(strings.TrimSpace(ticker)))
}

func price(code string, v float64) string {
	return fmt.Sprintf("%s%.4f %s", model.CurrencyPrefix(code), v, strings.ToUpper(code))
}

// FormatAnalysis renders the final analysis message. It must only be
// called with a successful result.
func (f *Formatter) FormatAnalysis(ticker, narrative string, snap model.PriceSnapshot) string {
	indicator, sign := "🟢", "+"
	if snap.Change24h < 0 {
		indicator, sign = "🔴", ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🚀 *Crypto Analysis: %s*\n\n", displayTicker(ticker))
	fmt.Fprintf(&b, "💰 *Current Price:* %s", price(snap.PrimaryCurrency, snap.Primary))
	if snap.SecondaryCurrency != "" {
		fmt.Fprintf(&b, " (%s)", price(snap.SecondaryCurrency, snap.Secondary))
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s *24h Change:* %s%.2f%%\n\n", indicator, sign, snap.Change24h)
	b.WriteString("---\n\n")
	b.WriteString(strings.TrimSpace(narrative))
	b.WriteString("\n\n---\n\n")
	b.WriteString("⚠️ *Disclaimer:* This analysis is for educational purposes only. " +
		"Always DYOR (Do Your Own Research) and never invest more than you can afford to lose!\n\n")
	fmt.Fprintf(&b, "_Powered by @%s 🤖_", f.BotUsername)
	return b.String()
}

// Format renders an analysis result, success or failure.
func (f *Formatter) Format(res model.AnalysisResult) string {
	if a := res.Analysis(); a != nil {
		return f.FormatAnalysis(a.Ticker, a.Narrative, a.Snapshot)
	}
	return FormatError(res.Err())
}

// FormatError renders the user-facing text for a failed analysis.
// Internal detail is never included.
func FormatError(err *model.AnalysisError) string {
	if err == nil {
		return UnexpectedText
	}
	upper := displayTicker(err.Ticker)
	switch err.Kind {
	case model.KindResolution:
		return fmt.Sprintf("❌ *Error:* Could not find coin with ticker '%s'. Please check the ticker symbol.\n\n"+
			"Try using a different ticker symbol or check the spelling!\n"+
			"Examples: `btc`, `eth`, `sol`, `arb`", EscapeMarkdown(err.Ticker))
	case model.KindFetch:
		return fmt.Sprintf("❌ *Error:* Could not fetch price data for %s\n\n"+
			"Try using a different ticker symbol or check the spelling!\n"+
			"Examples: `btc`, `eth`, `sol`, `arb`", upper)
	case model.KindGeneration:
		return fmt.Sprintf("❌ I couldn't generate analysis for %s right now.\n\n"+
			"I blur a bit leh, can try again later?", upper)
	default:
		return UnexpectedText
	}
}

// ThinkingText is the placeholder shown while an analysis runs.
func ThinkingText(ticker string) string {
	return fmt.Sprintf("🤔 Analyzing %s... This might take a moment!", displayTicker(ticker))
}

const UnexpectedText = "❌ Oops! Something went wrong while analyzing.\n\n" +
	"Please try again in a moment. If the problem persists, the issue might be with external APIs."

const WelcomeText = `🚀 *Welcome to BotSignalSGBot!*

I'm your AI-powered crypto analysis assistant, designed for Singapore traders! 🇸🇬

*Available Commands:*
• ` + "`/analyze <ticker>`" + ` - Get AI analysis for any cryptocurrency
• ` + "`/help`" + ` - Show this help message

*Example Usage:*
• ` + "`/analyze btc`" + ` - Analyze Bitcoin
• ` + "`/analyze arb`" + ` - Analyze Arbitrum
• ` + "`/analyze sol`" + ` - Analyze Solana

Ready to analyze some crypto? Just type ` + "`/analyze`" + ` followed by any coin ticker! 📈

_Powered by OpenAI & CoinGecko APIs_ 🤖`

const HelpText = `🤖 *BotSignalSGBot Help*

*Main Command:*
` + "`/analyze <ticker>`" + ` - Get comprehensive crypto analysis

*Supported Features:*
• Real-time price data (USD & SGD)
• AI-powered technical analysis
• Support/resistance levels
• Entry/exit strategies
• Risk/reward calculations

*Examples:*
• ` + "`/analyze btc`" + `
• ` + "`/analyze eth`" + `
• ` + "`/analyze arb`" + `

*Tips:*
• Use common ticker symbols (BTC, ETH, SOL, etc.)
• The bot searches by both symbol and coin name
• Analysis includes 24h price changes and market data`

const UsageText = "❌ Please provide a ticker symbol!\n\n" +
	"Example: `/analyze btc`\n" +
	"Use `/help` for more information."

const UnknownText = "❓ I don't recognize that command!\n\n" +
	"Try:\n" +
	"• `/start` - Get started\n" +
	"• `/analyze <ticker>` - Analyze a crypto\n" +
	"• `/help` - Get help\n\n" +
	"Example: `/analyze btc`"
