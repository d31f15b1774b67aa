// Package driving defines the primary (inbound) ports of the LimonIA
// pipeline, implemented by the services in internal/core/services and
// consumed by the CLI adapter.
package driving
