// Package platform is icdctl's narrow view of the target cluster.
//
// Everything the pipeline needs from the cluster management API goes through
// the Client interface: reading secret fields (decoded by client-go), reading
// route hosts and the cluster base domain, submitting rendered manifests with
// create-or-update semantics, and reading individual status fields for
// readiness checks.
//
// The real implementation wraps a typed clientset for core resources and a
// dynamic client for everything served by CRDs (routes, operator CSVs, GitOps
// applications). Tests substitute the client-go fakes.
package platform
