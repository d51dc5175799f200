// Package generator is the deterministic generation orchestrator. It maps a
// validated CPS to an ordered list of artifact requests, resolves each through
// a render-or-fallback chain, and folds the results into a single file map.
//
// The contract is strict determinism: the same CPS against the same renderer
// behavior produces a byte-identical file map. The orchestrator introduces no
// timestamps, randomness, or unordered iteration of its own.
package generator

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/forgelabs/fastapi-forge/internal/openapi"
	"github.com/forgelabs/fastapi-forge/internal/render"
	"github.com/forgelabs/fastapi-forge/internal/spec"
)

// Warning records one artifact that could not be produced. Warnings are
// non-fatal; a broken template never aborts the run.
type Warning struct {
	Path       string `json:"path"`
	TemplateID string `json:"template_id"`
	Reason     string `json:"reason"`
}

// artifactRequest is one entry in the fixed-order generation plan. Resolution
// walks: literal, then template, then procedural fallback, then the
// empty-or-warn policy.
type artifactRequest struct {
	templateID string
	outputPath string
	context    map[string]any

	// literal bypasses rendering entirely.
	literal *string
	// fallback is the procedural generator tried after a render failure.
	fallback func(spec.CPS) (string, error)
	// emptyOnError emits "" instead of a warning (package initializers).
	emptyOnError bool
}

// Generator resolves artifact requests against a renderer.
type Generator struct {
	renderer render.Renderer
	tracer   trace.Tracer
}

// New returns a Generator backed by the given renderer.
func New(r render.Renderer) *Generator {
	return &Generator{
		renderer: r,
		tracer:   otel.Tracer("generator"),
	}
}

// Generate produces the complete file map for a CPS, plus the warnings
// accumulated along the way. It trusts the CPS: callers validate first.
func (g *Generator) Generate(ctx context.Context, cps spec.CPS) (map[string]string, []Warning) {
	_, span := g.tracer.Start(ctx, "generator.generate")
	defer span.End()
	span.SetAttributes(
		attribute.String("project.name", cps.ProjectName),
		attribute.String("project.mode", string(cps.Mode)),
	)

	requests := g.plan(cps)

	files := make(map[string]string, len(requests))
	var warnings []Warning
	for _, req := range requests {
		content, ok, warn := g.resolve(cps, req)
		if warn != nil {
			warnings = append(warnings, *warn)
		}
		if ok {
			// Later requests overwrite earlier ones on the same path.
			files[req.outputPath] = content
		}
	}

	span.SetAttributes(
		attribute.Int("artifacts.count", len(files)),
		attribute.Int("warnings.count", len(warnings)),
	)
	return files, warnings
}

// plan builds the canonical fixed-order request list for a CPS.
func (g *Generator) plan(cps spec.CPS) []artifactRequest {
	prefix := cps.ProjectName + "/"
	ctx := map[string]any{"cps": cps}
	var requests []artifactRequest

	// Contract artifacts come first so later steps could reference them.
	if cps.GenerationOptions.OpenAPIFirst {
		requests = append(requests,
			artifactRequest{
				templateID: "openapi.json",
				outputPath: prefix + "openapi.json",
				context:    ctx,
				fallback: func(c spec.CPS) (string, error) {
					return openapi.Build(c).ToJSON()
				},
			},
			artifactRequest{
				templateID: "openapi.yaml",
				outputPath: prefix + "openapi.yaml",
				context:    ctx,
				fallback: func(c spec.CPS) (string, error) {
					return openapi.Build(c).ToYAML()
				},
			},
		)
	}

	// Environment artifacts, each gated on its own flag. The dockerfile
	// invariant was enforced at validation time; the plan trusts it.
	if cps.Environment.GenerateDockerfile {
		requests = append(requests, artifactRequest{
			templateID: "Dockerfile",
			outputPath: prefix + "Dockerfile",
			context:    ctx,
			fallback:   Dockerfile,
		})
	}
	if cps.Environment.GenerateCompose {
		requests = append(requests, artifactRequest{
			templateID: "docker-compose.yml",
			outputPath: prefix + "docker-compose.yml",
			context:    ctx,
			fallback:   DockerCompose,
		})
	}

	// Core application artifacts, unconditional.
	core := []string{
		"app/main.py",
		"app/core/llm.py",
		"app/schemas.py",
		"app/__init__.py",
		"requirements.txt",
		"README.md",
		".env.example",
	}
	for _, id := range core {
		requests = append(requests, artifactRequest{
			templateID:   id,
			outputPath:   prefix + id,
			context:      ctx,
			emptyOnError: strings.Contains(id, "__init__.py"),
		})
	}
	requests = append(requests,
		literalRequest(prefix+"app/core/__init__.py", "# Core module\n"),
		literalRequest(prefix+"app/api/__init__.py", "# API module\n"),
	)

	// Feature flag module is always present; only its contents vary.
	requests = append(requests, artifactRequest{
		templateID: "app/core/feature_flags.py",
		outputPath: prefix + "app/core/feature_flags.py",
		context:    ctx,
	})

	// Mode-specific artifacts are mutually exclusive branches.
	if cps.Mode == spec.ModeRAGOnly {
		for _, id := range []string{"app/api/ingest.py", "app/api/query.py", "app/core/vector_store.py"} {
			requests = append(requests, artifactRequest{
				templateID: id,
				outputPath: prefix + id,
				context:    ctx,
			})
		}
	} else if cps.Features.Chat {
		requests = append(requests, artifactRequest{
			templateID: "app/api/chat.py",
			outputPath: prefix + "app/api/chat.py",
			context:    ctx,
		})
	}

	// One endpoint module per declared module, in declaration order.
	for _, m := range cps.Modules {
		requests = append(requests, artifactRequest{
			templateID: "app/api/module.py",
			outputPath: prefix + "app/api/" + m + ".py",
			context: map[string]any{
				"cps":         cps,
				"module":      m,
				"moduleTitle": spec.TitleCase(m),
			},
		})
	}

	// Trailer artifacts.
	if cps.GenerationOptions.FailureFirst {
		todo := todoReport(cps)
		requests = append(requests, literalRequest(prefix+"TODO.md", todo))
	}
	if cps.GenerationOptions.GenerateTests {
		requests = append(requests, testSuite(cps)...)
	}

	return requests
}

// resolve runs the two-tier fallback chain for one request. The second return
// reports whether content should be inserted; the third is a non-fatal
// warning when the artifact had to be dropped.
func (g *Generator) resolve(cps spec.CPS, req artifactRequest) (string, bool, *Warning) {
	if req.literal != nil {
		return *req.literal, true, nil
	}

	content, err := g.renderer.Render(req.templateID, req.context)
	if err == nil {
		return content, true, nil
	}

	if req.fallback != nil {
		content, ferr := req.fallback(cps)
		if ferr == nil {
			return content, true, nil
		}
		err = errors.Join(err, ferr)
	}
	if req.emptyOnError {
		return "", true, nil
	}
	return "", false, &Warning{
		Path:       req.outputPath,
		TemplateID: req.templateID,
		Reason:     err.Error(),
	}
}

// SchemasOnly renders just the schema module, for visualization callers.
func (g *Generator) SchemasOnly(cps spec.CPS) (map[string]string, error) {
	content, err := g.renderer.Render("app/schemas.py", map[string]any{"cps": cps})
	if err != nil {
		return nil, fmt.Errorf("generate schemas: %w", err)
	}
	return map[string]string{
		cps.ProjectName + "/app/schemas.py": content,
	}, nil
}

// SortedPaths returns the file map's keys in sorted order. Every report or
// archive built from a file map iterates in this order.
func SortedPaths(files map[string]string) []string {
	paths := make([]string, 0, len(files))
	for p := range files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

func literalRequest(path, content string) artifactRequest {
	return artifactRequest{outputPath: path, literal: &content}
}
