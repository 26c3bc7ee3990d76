package gateway

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	topPortfoliosSQL = "SELECT client_name, portfolio_value FROM portfolios ORDER BY portfolio_value DESC LIMIT 5;"
	rmBreakupSQL     = "SELECT relationship_manager, SUM(portfolio_value) AS total_value FROM portfolios GROUP BY relationship_manager ORDER BY total_value DESC;"
	topRMsSQL        = "SELECT relationship_manager, SUM(portfolio_value) AS total_value FROM portfolios GROUP BY relationship_manager ORDER BY total_value DESC LIMIT 5;"
	holdersSQL       = "SELECT client_name, portfolio_value FROM portfolios WHERE stock = '%s' ORDER BY portfolio_value DESC;"
)

var holdersPattern = regexp.MustCompile(`(?i)highest holders of ([\w\s]+)`)

// KnownIntent returns the fixed statement for the desk's standing business
// questions. These skip the model entirely.
func KnownIntent(question string) (string, bool) {
	q := strings.ToLower(strings.TrimSpace(question))
	switch {
	case strings.Contains(q, "top five portfolios"), strings.Contains(q, "top 5 portfolios"):
		return topPortfoliosSQL, true
	case strings.Contains(q, "breakup of portfolio values per relationship manager"):
		return rmBreakupSQL, true
	case strings.Contains(q, "top relationship managers"):
		return topRMsSQL, true
	case strings.Contains(q, "highest holders of"):
		match := holdersPattern.FindStringSubmatch(question)
		if match == nil {
			return "", false
		}
		stock := strings.TrimSpace(match[1])
		if stock == "" {
			return "", false
		}
		return fmt.Sprintf(holdersSQL, strings.ReplaceAll(stock, "'", "''")), true
	default:
		return "", false
	}
}
