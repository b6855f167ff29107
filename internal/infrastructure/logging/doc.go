// Package logging builds the zap root logger shared by the server and the
// CLI. Production output is JSON lines on stderr; development output is
// coloured console text.
//
// Each stage logs through a named child:
//
//	root, err := logging.FromConfig(cfg.Logging)
//	scanner := scraper.NewScanner(root.Component("scanner"))
//	root.Info("Form filled", zap.Int("filled", 12))
package logging
