package notifier

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"SignalSG/internal/model"
)

func snap(change float64) model.PriceSnapshot {
	return model.PriceSnapshot{
		PrimaryCurrency:   "usd",
		SecondaryCurrency: "sgd",
		Primary:           65000.1234,
		Secondary:         87500.5678,
		Change24h:         change,
	}
}

func TestFormatAnalysis_PositiveChange(t *testing.T) {
	f := NewFormatter("@BotSignalSGBot")
	msg := f.FormatAnalysis("btc", "Support at 64k lah.", snap(5.0))

	assert.Contains(t, msg, "🚀 *Crypto Analysis: BTC*")
	assert.Contains(t, msg, "💰 *Current Price:* $65000.1234 USD (S$87500.5678 SGD)")
	assert.Contains(t, msg, "🟢 *24h Change:* +5.00%")
	assert.Contains(t, msg, "Support at 64k lah.")
	assert.Contains(t, msg, "_Powered by @BotSignalSGBot 🤖_")
	assert.NotContains(t, msg, "🔴")
}

func TestFormatAnalysis_NegativeChange(t *testing.T) {
	msg := NewFormatter("").FormatAnalysis("eth", "text", snap(-3.25))

	assert.Contains(t, msg, "🔴 *24h Change:* -3.25%")
	assert.NotContains(t, msg, "+-3.25")
	assert.NotContains(t, msg, "🟢")
}

func TestFormatAnalysis_ZeroIsNonNegative(t *testing.T) {
	msg := NewFormatter("").FormatAnalysis("usdc", "flat", snap(0))
	assert.Contains(t, msg, "🟢 *24h Change:* +0.00%")
}

func TestFormatAnalysis_NarrativeVerbatimAndBlocksOnce(t *testing.T) {
	narrative := "1. **Support**: 64000\n2. **Resistance**: 66000\n\nSteady lah."
	msg := NewFormatter("").FormatAnalysis("btc", "\n"+narrative+"\n", snap(2.15))

	assert.Contains(t, msg, "---\n\n"+narrative+"\n\n---")
	assert.Equal(t, 1, strings.Count(msg, "Crypto Analysis"))
	assert.Equal(t, 1, strings.Count(msg, "Disclaimer"))
	assert.Equal(t, 1, strings.Count(msg, "Powered by"))
}

func TestFormatAnalysis_WithoutSecondary(t *testing.T) {
	s := snap(1)
	s.SecondaryCurrency = ""
	msg := NewFormatter("").FormatAnalysis("btc", "x", s)
	assert.Contains(t, msg, "*Current Price:* $65000.1234 USD\n")
}

func TestFormat_Result(t *testing.T) {
	f := NewFormatter("")
	ok := model.Succeeded(model.Analysis{Ticker: "btc", AssetID: "bitcoin", Snapshot: snap(1), Narrative: "n"})
	assert.Contains(t, f.Format(ok), "Crypto Analysis: BTC")

	failed := model.Failed(&model.AnalysisError{Kind: model.KindFetch, Ticker: "btc"})
	assert.Contains(t, f.Format(failed), "Could not fetch price data for BTC")
}

func TestFormatError(t *testing.T) {
	tests := []struct {
		name string
		err  *model.AnalysisError
		want string
	}{
		{"resolution", &model.AnalysisError{Kind: model.KindResolution, Ticker: "DoesNotExist123"}, "'DoesNotExist123'"},
		{"fetch", &model.AnalysisError{Kind: model.KindFetch, Ticker: "arb"}, "Could not fetch price data for ARB"},
		{"generation", &model.AnalysisError{Kind: model.KindGeneration, Ticker: "sol"}, "couldn't generate analysis for SOL"},
		{"unexpected", &model.AnalysisError{Kind: model.KindUnexpected, Ticker: "btc", Err: errors.New("dial tcp secret-host")}, "Something went wrong"},
		{"nil", nil, "Something went wrong"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := FormatError(tt.err)
			assert.Contains(t, msg, tt.want)
			assert.NotContains(t, msg, "secret-host")
		})
	}
}

func TestThinkingText(t *testing.T) {
	assert.Equal(t, "🤔 Analyzing ARB... This might take a moment!", ThinkingText(" arb "))
}

func TestUserTickersAreMarkdownEscaped(t *testing.T) {
	assert.Equal(t, `a\_b\*c\`+"`"+`d\[e`, EscapeMarkdown("a_b*c`d[e"))
	assert.Contains(t, ThinkingText("shiba_inu"), `SHIBA\_INU`)

	msg := FormatError(&model.AnalysisError{Kind: model.KindResolution, Ticker: "my_coin*"})
	assert.Contains(t, msg, `'my\_coin\*'`)
	msg = FormatError(&model.AnalysisError{Kind: model.KindFetch, Ticker: "pepe_2"})
	assert.Contains(t, msg, `PEPE\_2`)

	out := NewFormatter("").FormatAnalysis("a_b", "narrative with _italic_", snap(1))
	assert.Contains(t, out, `*Crypto Analysis: A\_B*`)
	assert.Contains(t, out, "narrative with _italic_")
}
