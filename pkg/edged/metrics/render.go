package metrics

import "fmt"

// RenderPlain renders c as the plain-text exposition format served at
// /metrics: one "key value" pair per line, in this fixed order.
func RenderPlain(c *Counters) string {
	return fmt.Sprintf(
		"requests_total %d\n"+
			"requests_per_sec %.2f\n"+
			"connections_current %d\n"+
			"bytes_in %d\n"+
			"bytes_out %d\n",
		c.RequestsTotal(),
		c.RequestsPerSec(),
		c.ConnectionsCurrent(),
		c.BytesIn(),
		c.BytesOut(),
	)
}
