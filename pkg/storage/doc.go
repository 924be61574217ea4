// Package storage manages the on-disk layout of a scrape run.
//
// Layout under the configured base directory:
//
//	downloads/raw/raw_<name>                    unprocessed download, deleted after processing
//	downloads/processed/<stem>_left_cropped.jpg
//	downloads/processed/<stem>_right_cropped.jpg
//	downloads/processed/<stem>.json             optional metadata sidecar
//
// All writes go through WriteAtomic: data lands in a temporary file in the
// destination directory and is renamed into place.
package storage
