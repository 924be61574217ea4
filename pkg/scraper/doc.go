// Package scraper orchestrates one before/after gallery run.
//
// A run renders the gallery page to obtain its carousel image sources, then
// handles each unique source in page order:
//
//   - resolve the source against the page's base URL and build a safe filename
//   - download it to downloads/raw/raw_<filename>
//   - split and crop it into downloads/processed/<stem>_left_cropped.jpg and
//     <stem>_right_cropped.jpg
//   - remove the raw file, whatever the outcome
//
// Failures are contained per source and recorded in the RunSummary; only a
// render failure aborts the run.
//
// Usage:
//
//	s, err := scraper.New(cfg, log)
//	if err != nil {
//	    return err
//	}
//	summary, err := s.Run(ctx, cfg.Site.PageURL)
package scraper
