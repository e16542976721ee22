package news

import (
	"fmt"
	"strings"

	"github.com/NgoTomek/PortfolioPanic/internal/domain"
)

// TemplateContent is the built-in content generator. It produces flat,
// deterministic copy so the engine runs standalone; a richer generator
// can be swapped in at the boundary.
type TemplateContent struct{}

// Generate implements ContentGenerator.
func (TemplateContent) Generate(assets []domain.Asset, round int, highImpact bool) (string, string) {
	names := make([]string, len(assets))
	for i, a := range assets {
		names[i] = a.Name
	}
	subject := "the market"
	if len(names) > 0 {
		subject = strings.Join(names, ", ")
	}

	if highImpact {
		return fmt.Sprintf("Breaking: major development hits %s", subject),
			fmt.Sprintf("Analysts scramble as round %d delivers a shock to %s.", round, subject)
	}
	return fmt.Sprintf("Market update: %s in focus", subject),
		fmt.Sprintf("Round %d trading sees renewed attention on %s.", round, subject)
}
