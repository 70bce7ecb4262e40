package parsers

import (
	"jmoretti/finledger/internal/logging"
	"jmoretti/finledger/internal/models"
)

// Chain runs institution parsers in a fixed, most-specific-first order with
// the generic fallback last. A parser that matched but produced zero
// transactions falls through to the fallback rather than erroring: partial
// header overlap between institutions makes an empty match indistinguishable
// from a wrong match.
type Chain struct {
	parsers  []StatementParser
	fallback StatementParser
	logger   logging.Logger
}

// NewChain builds the standard chain. Order is load-bearing: header sets
// overlap, so the most constrained detectors must run first.
func NewChain(logger logging.Logger) *Chain {
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &Chain{
		parsers: []StatementParser{
			&CapitalOneCardParser{},
			&ChaseCardParser{},
			&AmexCardParser{},
			&FidelityBrokerageParser{},
			&BankOfAmericaParser{},
		},
		fallback: &GenericCSVParser{},
		logger:   logger,
	}
}

// Parse runs the chain over a header row and data rows.
func (c *Chain) Parse(headers []string, rows [][]string) models.ParseResult {
	sample := rows
	if len(sample) > 5 {
		sample = sample[:5]
	}

	for _, p := range c.parsers {
		if !p.Detect(headers, sample) {
			continue
		}
		result := p.Parse(headers, rows)
		if result.Success && len(result.Transactions) > 0 {
			c.logger.Info("statement parsed",
				logging.Field{Key: logging.FieldParser, Value: p.Name()},
				logging.Field{Key: logging.FieldCount, Value: len(result.Transactions)})
			return result
		}
		c.logger.Debug("parser matched but produced no transactions, falling through",
			logging.Field{Key: logging.FieldParser, Value: p.Name()})
	}

	result := c.fallback.Parse(headers, rows)
	if result.Success {
		c.logger.Info("statement parsed by fallback",
			logging.Field{Key: logging.FieldCount, Value: len(result.Transactions)})
	} else {
		c.logger.Warn("statement unparseable",
			logging.Field{Key: logging.FieldReason, Value: result.Error})
	}
	return result
}

// Detect runs only the detection step, for preview labeling. The fallback is
// reported only when it would actually find its required columns.
func (c *Chain) Detect(headers []string, sampleRows [][]string) models.DetectionResult {
	for _, p := range c.parsers {
		if p.Detect(headers, sampleRows) {
			return models.DetectionResult{
				Detected:    true,
				ParserName:  p.Name(),
				Institution: p.Institution(),
			}
		}
	}
	if g, ok := c.fallback.(*GenericCSVParser); ok {
		if _, err := g.locateColumns(headers, sampleRows); err == nil {
			return models.DetectionResult{
				Detected:    true,
				ParserName:  g.Name(),
				Institution: g.Institution(),
			}
		}
	}
	return models.DetectionResult{}
}
