package model

import "fmt"

// ErrorKind classifies why an analysis request failed.
type ErrorKind int

const (
	KindUnexpected ErrorKind = iota
	KindResolution
	KindFetch
	KindGeneration
)

func (k ErrorKind) String() string {
	switch k {
	case KindResolution:
		return "resolution"
	case KindFetch:
		return "fetch"
	case KindGeneration:
		return "generation"
	default:
		return "unexpected"
	}
}

// AnalysisError is the failure payload of an AnalysisResult.
type AnalysisError struct {
	Kind   ErrorKind
	Ticker string // as typed by the user
	Err    error
}

func (e *AnalysisError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s error for %q", e.Kind, e.Ticker)
	}
	return fmt.Sprintf("%s error for %q: %v", e.Kind, e.Ticker, e.Err)
}

func (e *AnalysisError) Unwrap() error { return e.Err }

// Analysis is the success payload of an AnalysisResult.
type Analysis struct {
	Ticker    string
	AssetID   string
	Snapshot  PriceSnapshot
	Narrative string
}

// AnalysisResult holds exactly one of Analysis or Err.
type AnalysisResult struct {
	analysis *Analysis
	err      *AnalysisError
}

// Succeeded wraps a successful analysis.
func Succeeded(a Analysis) AnalysisResult {
	return AnalysisResult{analysis: &a}
}

// Failed wraps a failure. A nil err is reported as unexpected.
func Failed(err *AnalysisError) AnalysisResult {
	if err == nil {
		err = &AnalysisError{Kind: KindUnexpected}
	}
	return AnalysisResult{err: err}
}

// OK reports whether the result carries an analysis.
func (r AnalysisResult) OK() bool { return r.analysis != nil }

// Analysis returns the success payload, or nil on failure.
func (r AnalysisResult) Analysis() *Analysis { return r.analysis }

// Err returns the failure payload, or nil on success.
func (r AnalysisResult) Err() *AnalysisError { return r.err }
