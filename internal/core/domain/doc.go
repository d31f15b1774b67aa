// Package domain contains the core business entities of the LimonIA
// pipeline: normalised records, chunks, search results and answers.
// It has no dependencies on infrastructure.
package domain
