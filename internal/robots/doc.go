// Package robots loads and evaluates robots.txt rules for a single
// host. The crawl targets one host per run, so rules are fetched once
// up front rather than cached per domain. Load failures are treated
// as permission: a missing, unreachable, or unparsable robots.txt
// yields a policy that allows every URL.
package robots
