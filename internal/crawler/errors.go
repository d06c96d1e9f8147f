package crawler

import "errors"

// ErrBadSeed is returned when the start URL cannot seed a crawl. It
// is the only fatal crawl error; everything after the seed is
// recorded per page.
var ErrBadSeed = errors.New("seed URL must be an absolute https URL")
