package remote

import (
	"fmt"
	"strconv"
	"strings"
)

// --------------------------------------------------------------------------
// Table client configuration struct
// --------------------------------------------------------------------------

// TableConfig holds the parameters binding a table client to one remote
// table plus the transport tuning knobs.
type TableConfig struct {
	// SpreadsheetID is the id of the remote document.
	SpreadsheetID string
	// Sheet is the title of the tab inside the document.
	Sheet string

	// Transport parameters
	TimeoutSecond int     // per-request timeout (0 = no timeout)
	RetryCount    int     // attempts for retryable failures (min 1)
	RatePerSecond float64 // request rate limit (0 = unlimited)
}

// DefaultTableConfig returns a TableConfig with the transport defaults.
func DefaultTableConfig() TableConfig {
	return TableConfig{
		TimeoutSecond: 10,
		RetryCount:    3,
		RatePerSecond: 1,
	}
}

// String returns a formatted string representation of the configuration
func (c *TableConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	addSection("Remote Table")
	addField("Spreadsheet ID", c.SpreadsheetID)
	addField("Sheet", c.Sheet)

	addSection("Transport")
	addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	addField("Retry Count", strconv.Itoa(c.RetryCount))
	if c.RatePerSecond > 0 {
		addField("Rate Limit", fmt.Sprintf("%.1f req/sec", c.RatePerSecond))
	} else {
		addField("Rate Limit", "unlimited")
	}

	return sb.String()
}
