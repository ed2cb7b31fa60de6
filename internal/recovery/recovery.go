// Package recovery turns free model output into career recommendation records.
//
// Generated text is tried against a cascade of parsers, from strict JSON down to
// line heuristics. The first parser that yields at least one record wins; when
// all of them fail the canned recommendations are returned.
package recovery

import (
	"strings"

	"github.com/spigell/career-recommender/internal/career"
)

// Strategy names the parser that produced the records.
type Strategy string

const (
	StrategyDirect   Strategy = "direct"
	StrategyArray    Strategy = "array"
	StrategyKeyValue Strategy = "keyvalue"
	StrategyLines    Strategy = "lines"
	StrategyFallback Strategy = "fallback"
)

// Result holds recovered records and how they were obtained.
type Result struct {
	Records  []career.Recommendation
	Strategy Strategy
	// Attempts lists the strategies that were tried and yielded nothing.
	Attempts []Strategy
}

type parser struct {
	strategy Strategy
	parse    func(text string) []career.Recommendation
}

var cascade = []parser{
	{strategy: StrategyDirect, parse: parseDirect},
	{strategy: StrategyArray, parse: parseArray},
	{strategy: StrategyKeyValue, parse: parseKeyValue},
	{strategy: StrategyLines, parse: parseLines},
}

// Parse runs the cascade over raw. budget is only used for the canned fallback.
func Parse(raw string, budget float64) *Result {
	result := &Result{}

	text := strings.TrimSpace(raw)
	if text != "" {
		for _, p := range cascade {
			records := p.parse(text)
			if len(records) > 0 {
				result.Records = records
				result.Strategy = p.strategy
				return result
			}
			result.Attempts = append(result.Attempts, p.strategy)
		}
	}

	result.Records = career.Fallback(budget)
	result.Strategy = StrategyFallback
	return result
}
