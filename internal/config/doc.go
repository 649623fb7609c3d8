// Package config provides configuration management for icdctl.
//
// Configuration is resolved from three layers, each overriding the previous:
//
//  1. Compiled defaults
//     - Sensible values for every non-credential setting so icdctl works
//       against a stock OpenShift GitOps installation out of the box.
//
//  2. Optional YAML file (--config flag, or ./.icdctl/config.yaml)
//     - Lets teams pin chart references, namespaces, and candidate resource
//       names in version control.
//
//  3. Process environment (highest precedence)
//     - Carries the required, credential-bearing inputs. These are never
//       defaulted and never written to any file.
//
// Required environment variables:
//
//	MODEL_API_TOKEN  bearer token for the model API (credential; no default)
//	MODEL_URL        base URL of the model API
//	MODEL_NAME       model identifier passed to the deployed application
//
// Validation happens before any network call is made. Every missing required
// key is reported at once (not just the first) via MissingConfigurationError.
package config
