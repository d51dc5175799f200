package generator

import (
	"fmt"
	"strings"

	"github.com/forgelabs/fastapi-forge/internal/spec"
)

// testSuite builds the generated-project test artifacts under tests/. The
// generated tests are deterministic and never call external LLM APIs; they
// cover API health, schema validity, and feature-flag enforcement.
func testSuite(cps spec.CPS) []artifactRequest {
	prefix := cps.ProjectName + "/tests/"
	return []artifactRequest{
		literalRequest(prefix+"__init__.py", "# Test package\n"),
		literalRequest(prefix+"conftest.py", conftest()),
		literalRequest(prefix+"test_health.py", healthTests(cps)),
		literalRequest(prefix+"test_schemas.py", schemaTests(cps)),
		literalRequest(prefix+"test_feature_flags.py", featureFlagTests(cps)),
		literalRequest(prefix+"requirements-test.txt", `# Test dependencies
pytest>=7.0.0
pytest-asyncio>=0.21.0
httpx>=0.24.0
`),
	}
}

func conftest() string {
	return `"""
Pytest configuration and fixtures

Deterministic tests only. No external API mocking.
"""
import pytest
from fastapi.testclient import TestClient
from app.main import app


@pytest.fixture
def client():
    """Create test client"""
    return TestClient(app)


@pytest.fixture
def async_client():
    """Create async test client"""
    from httpx import AsyncClient
    return AsyncClient(app=app, base_url="http://test")
`
}

func healthTests(cps spec.CPS) string {
	return fmt.Sprintf(`"""
Health Endpoint Tests for %s

These tests verify the API is running and responding correctly.
No external dependencies or LLM calls.
"""
import pytest


def test_root_endpoint(client):
    """Test root endpoint returns 200"""
    response = client.get("/")
    assert response.status_code == 200
    assert "message" in response.json()


def test_root_endpoint_content(client):
    """Test root endpoint returns expected content"""
    response = client.get("/")
    data = response.json()
    assert isinstance(data["message"], str)
    assert len(data["message"]) > 0


def test_invalid_endpoint_returns_404(client):
    """Test non-existent endpoint returns 404"""
    response = client.get("/nonexistent-endpoint-12345")
    assert response.status_code == 404
`, cps.ProjectName)
}

func schemaTests(cps spec.CPS) string {
	var b strings.Builder
	fmt.Fprintf(&b, `"""
Schema Validation Tests for %s

These tests verify request/response schema validity.
No external dependencies or LLM calls.
"""
import pytest
from pydantic import ValidationError
from app.schemas import *


def test_message_response_schema():
    """Test basic response schema"""
    response = MessageResponse(message="ok")
    assert response.message == "ok"
`, cps.ProjectName)

	if cps.Features.Chat {
		b.WriteString(`

def test_chat_request_valid():
    """Test valid ChatRequest"""
    request = ChatRequest(message="Hello")
    assert request.message == "Hello"


def test_chat_response_valid():
    """Test valid ChatResponse"""
    response = ChatResponse(reply="Hello there")
    assert response.reply == "Hello there"
`)
	}
	if cps.Features.RAG {
		b.WriteString(`

def test_query_request_valid():
    """Test valid QueryRequest"""
    request = QueryRequest(query="What is X?")
    assert request.query == "What is X?"


def test_query_response_valid():
    """Test valid QueryResponse"""
    response = QueryResponse(reply="X is...", context_used=["doc1", "doc2"])
    assert response.reply == "X is..."
    assert len(response.context_used) == 2


def test_ingest_response_valid():
    """Test valid IngestResponse"""
    response = IngestResponse(status="success", message="Ingested 10 documents")
    assert response.status == "success"
`)
	}
	return b.String()
}

func featureFlagTests(cps spec.CPS) string {
	pyBool := func(b bool) string {
		if b {
			return "True"
		}
		return "False"
	}

	var b strings.Builder
	fmt.Fprintf(&b, `"""
Feature Flag Enforcement Tests for %s

These tests verify that feature flags are properly enforced.
Disabled features should raise FeatureDisabledError.
"""
import pytest
from app.core.feature_flags import (
    FEATURE_CHAT,
    FEATURE_RAG,
    FEATURE_STREAMING,
    FEATURE_EMBEDDINGS,
    FeatureDisabledError,
    require_feature,
)


def test_feature_chat_value():
    """Verify FEATURE_CHAT matches the specification"""
    assert FEATURE_CHAT == %s


def test_feature_rag_value():
    """Verify FEATURE_RAG matches the specification"""
    assert FEATURE_RAG == %s


def test_feature_streaming_value():
    """Verify FEATURE_STREAMING matches the specification"""
    assert FEATURE_STREAMING == %s


def test_feature_embeddings_value():
    """Verify FEATURE_EMBEDDINGS matches the specification"""
    assert FEATURE_EMBEDDINGS == %s
`, cps.ProjectName,
		pyBool(cps.Features.Chat), pyBool(cps.Features.RAG),
		pyBool(cps.Features.Streaming), pyBool(cps.Features.Embeddings))

	b.WriteString(`

@pytest.mark.asyncio
async def test_require_feature_enabled():
    """Test require_feature allows enabled features"""
    @require_feature("test", True)
    async def enabled_function():
        return "success"

    result = await enabled_function()
    assert result == "success"


@pytest.mark.asyncio
async def test_require_feature_disabled():
    """Test require_feature blocks disabled features"""
    @require_feature("test", False)
    async def disabled_function():
        return "should not reach"

    with pytest.raises(FeatureDisabledError):
        await disabled_function()
`)
	return b.String()
}
