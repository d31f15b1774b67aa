// Package driven defines the secondary (outbound) ports of the LimonIA
// pipeline: loaders, chunking, embeddings, the vector store, the chat
// model and prompt storage. Adapters under internal/adapters/driven
// implement them.
package driven
