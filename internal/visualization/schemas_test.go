package visualization

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgelabs/fastapi-forge/internal/spec"
)

func TestExtract(t *testing.T) {
	t.Run("message response always present", func(t *testing.T) {
		v := Extract(spec.CPS{ProjectName: "x"})
		require.Contains(t, v.PydanticModels, "MessageResponse")
		require.Contains(t, v.JSONSchemas, "MessageResponse")
		assert.NotContains(t, v.PydanticModels, "ChatRequest")
	})

	t.Run("chat schemas follow the flag", func(t *testing.T) {
		v := Extract(spec.CPS{Features: spec.Features{Chat: true}})
		assert.Contains(t, v.PydanticModels, "ChatRequest")
		assert.Contains(t, v.PydanticModels, "ChatResponse")
		assert.Contains(t, v.PydanticModels["ChatRequest"], "stream: Optional[bool] = False")
	})

	t.Run("rag schemas follow the flag", func(t *testing.T) {
		v := Extract(spec.CPS{Features: spec.Features{RAG: true}})
		for _, name := range []string{"IngestRequest", "IngestResponse", "QueryRequest", "QueryResponse"} {
			assert.Contains(t, v.PydanticModels, name)
			assert.Contains(t, v.JSONSchemas, name)
		}
	})

	t.Run("module schemas use title-cased names", func(t *testing.T) {
		v := Extract(spec.CPS{Modules: []string{"orders"}})
		require.Contains(t, v.PydanticModels, "OrdersBase")
		assert.Contains(t, v.PydanticModels["OrdersBase"], "class OrdersBase(BaseModel):")
		assert.Equal(t, "OrdersBase", v.JSONSchemas["OrdersBase"]["title"])
	})
}

func TestJSONSchemaDoc(t *testing.T) {
	doc := JSONSchemaDoc(spec.CPS{ProjectName: "Support Bot", Features: spec.Features{Chat: true}})
	assert.Equal(t, "http://json-schema.org/draft-07/schema#", doc["$schema"])
	assert.Equal(t, "Support Bot Schemas", doc["title"])
	defs := doc["definitions"].(map[string]map[string]any)
	assert.Contains(t, defs, "ChatResponse")
}

func TestSummary(t *testing.T) {
	s := Summary(spec.CPS{Features: spec.Features{Chat: true}, Modules: []string{"orders"}})
	assert.Equal(t, 4, s.TotalModels)

	var names []string
	for _, m := range s.Models {
		names = append(names, m.Name)
		assert.GreaterOrEqual(t, m.FieldCount, 1)
	}
	// Sorted name order keeps the preview deterministic.
	assert.Equal(t, []string{"ChatRequest", "ChatResponse", "MessageResponse", "OrdersBase"}, names)
}
