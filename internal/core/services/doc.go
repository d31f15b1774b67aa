// Package services implements the driving ports: the ingestion pipeline
// (assemble, chunk, embed, persist, archive) and the query pipeline
// (embed, search, answer). Services depend only on ports, never on
// concrete adapters.
package services
