// Package simplify collapses noisy raw capture streams into compact action
// sequences. It provides pairwise mergers (press+release into a click,
// repeated clicks into a multi-click, key activity into writes, accumulated
// scrolls), a generic left-to-right merge engine, and the ordered pipeline
// of simplification passes.
package simplify
