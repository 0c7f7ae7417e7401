package research

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// DefaultDimensions is the fallback framework used when the oracle cannot
// produce a usable decomposition.
var DefaultDimensions = []Dimension{
	"market size",
	"competitive landscape",
	"technology trends",
	"user needs",
	"policy and regulation",
}

const maxDimensions = 7

// Decompose asks the oracle to break a topic into research dimensions. An
// undecodable or empty answer falls back to DefaultDimensions; the result
// order is preserved and fixes report section order.
func Decompose(ctx context.Context, o Oracle, topic string) []Dimension {
	var names []string
	if !o.InvokeJSON(ctx, decomposePrompt(topic), "", &names) {
		zap.L().Warn("research: decomposition unparsable, using default dimensions",
			zap.String("topic", topic),
		)
		return append([]Dimension(nil), DefaultDimensions...)
	}

	dims := make([]Dimension, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		dims = append(dims, Dimension(n))
		if len(dims) == maxDimensions {
			break
		}
	}
	if len(dims) == 0 {
		zap.L().Warn("research: decomposition empty, using default dimensions",
			zap.String("topic", topic),
		)
		return append([]Dimension(nil), DefaultDimensions...)
	}

	zap.L().Info("research: topic decomposed",
		zap.String("topic", topic),
		zap.Int("dimensions", len(dims)),
	)
	return dims
}
