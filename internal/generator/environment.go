package generator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/forgelabs/fastapi-forge/internal/spec"
)

// ErrProfileDisabled reports a procedural environment generator invoked for a
// profile the CPS did not enable.
var ErrProfileDisabled = errors.New("environment profile not enabled")

func boolFlag(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// Dockerfile is the procedural fallback for the Dockerfile artifact. It
// refuses to run when the flag is off rather than guessing at intent.
func Dockerfile(cps spec.CPS) (string, error) {
	if !cps.Environment.GenerateDockerfile {
		return "", fmt.Errorf("%w: set environment.generate_dockerfile to true", ErrProfileDisabled)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Generated Dockerfile for %s\n", cps.ProjectName)
	fmt.Fprintf(&b, "# Environment: %s\n", cps.Environment.Type)
	b.WriteString(`#
# This Dockerfile is deterministically generated from the project
# specification. Regenerate instead of editing.

FROM python:3.11-slim

ENV PYTHONDONTWRITEBYTECODE=1
ENV PYTHONUNBUFFERED=1

`)
	fmt.Fprintf(&b, "ENV FEATURE_CHAT=%s\n", boolFlag(cps.Features.Chat))
	fmt.Fprintf(&b, "ENV FEATURE_RAG=%s\n", boolFlag(cps.Features.RAG))
	fmt.Fprintf(&b, "ENV FEATURE_STREAMING=%s\n", boolFlag(cps.Features.Streaming))
	fmt.Fprintf(&b, "ENV FEATURE_EMBEDDINGS=%s\n", boolFlag(cps.Features.Embeddings))
	b.WriteString(`
WORKDIR /app

COPY requirements.txt .
RUN pip install --no-cache-dir -r requirements.txt

COPY . .

EXPOSE 8000

HEALTHCHECK --interval=30s --timeout=10s --start-period=5s --retries=3 \
    CMD curl -f http://localhost:8000/ || exit 1

CMD ["uvicorn", "app.main:app", "--host", "0.0.0.0", "--port", "8000"]
`)
	return b.String(), nil
}

// DockerCompose is the procedural fallback for the compose artifact. The
// service name is the lowered, underscored project name; a chroma sidecar is
// added when the CPS names a chroma vector store.
func DockerCompose(cps spec.CPS) (string, error) {
	if !cps.Environment.GenerateCompose {
		return "", fmt.Errorf("%w: set environment.generate_compose to true", ErrProfileDisabled)
	}

	service := cps.ServiceName()

	var b strings.Builder
	fmt.Fprintf(&b, "# Generated docker-compose.yml for %s\n", service)
	fmt.Fprintf(&b, "# Environment: %s\n", cps.Environment.Type)
	b.WriteString(`#
# This file is deterministically generated from the project specification.
# Regenerate instead of editing.

services:
`)
	fmt.Fprintf(&b, "  %s:\n", service)
	b.WriteString(`    build:
      context: .
      dockerfile: Dockerfile
    ports:
      - "8000:8000"
    environment:
`)
	fmt.Fprintf(&b, "      - FEATURE_CHAT=%s\n", boolFlag(cps.Features.Chat))
	fmt.Fprintf(&b, "      - FEATURE_RAG=%s\n", boolFlag(cps.Features.RAG))
	fmt.Fprintf(&b, "      - FEATURE_STREAMING=%s\n", boolFlag(cps.Features.Streaming))
	fmt.Fprintf(&b, "      - FEATURE_EMBEDDINGS=%s\n", boolFlag(cps.Features.Embeddings))
	b.WriteString(`    env_file:
      - .env
    restart: unless-stopped
    healthcheck:
      test: ["CMD", "curl", "-f", "http://localhost:8000/"]
      interval: 30s
      timeout: 10s
      retries: 3
      start_period: 5s
`)

	if cps.Features.RAG && strings.Contains(strings.ToLower(cps.VectorStore), "chroma") {
		b.WriteString(`
  chromadb:
    image: chromadb/chroma:latest
    ports:
      - "8001:8000"
    volumes:
      - chroma_data:/chroma/chroma

volumes:
  chroma_data:
`)
	}

	return b.String(), nil
}
