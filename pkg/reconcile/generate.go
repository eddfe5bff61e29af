//go:generate gomarkdoc -e -f github -o README.md . --repository.url https://github.com/agentstation/catalogbridge --repository.default-branch master --repository.path /pkg/reconcile

// Package reconcile decides, for each target product, which legacy data
// applies and merges it idempotently with what the target already holds:
// media assets and links, categories, storefront visibility, price and tax.
//
// The engine is sequential. One product is fully reconciled, with a single
// partial update, before the next one starts.
package reconcile
