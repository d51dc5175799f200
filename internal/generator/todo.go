package generator

import (
	"fmt"
	"strings"

	"github.com/forgelabs/fastapi-forge/internal/spec"
)

// todoReport builds the TODO.md trailer emitted under failure_first: one
// checklist section per enabled feature plus a fixed general section.
func todoReport(cps spec.CPS) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# TODO: %s\n", cps.ProjectName)
	b.WriteString(`
This file lists features that need implementation or review.
Generated from the project specification - update this as you complete items.

## Required Implementations

`)

	if cps.Features.Chat {
		b.WriteString(`### Chat Feature
- [ ] Implement actual LLM chat logic in ` + "`app/api/chat.py`" + `
- [ ] Configure system prompts in ` + "`app/core/llm.py`" + `
- [ ] Add error handling for API rate limits

`)
	}
	if cps.Features.RAG {
		b.WriteString(`### RAG Feature
- [ ] Implement document ingestion in ` + "`app/api/ingest.py`" + `
- [ ] Configure vector store connection in ` + "`app/core/vector_store.py`" + `
- [ ] Implement semantic search in ` + "`app/api/query.py`" + `
- [ ] Add chunking strategy for large documents

`)
	}
	if cps.Features.Streaming {
		b.WriteString(`### Streaming Feature
- [ ] Implement SSE streaming in chat endpoint
- [ ] Add streaming response handling
- [ ] Test with various client libraries

`)
	}
	if cps.Features.Embeddings {
		b.WriteString(`### Embeddings Feature
- [ ] Configure embedding model
- [ ] Implement batch embedding generation
- [ ] Add caching for frequently used embeddings

`)
	}

	b.WriteString(`## General TODOs

- [ ] Review and update environment variables in ` + "`.env.example`" + `
- [ ] Add production logging configuration
- [ ] Implement rate limiting
- [ ] Add API documentation
- [ ] Set up CI/CD pipeline
- [ ] Add monitoring and alerting

## Notes

Items marked with ` + "`NotImplementedError`" + ` in code require implementation.
See individual files for specific TODO comments.
`)
	return b.String()
}
