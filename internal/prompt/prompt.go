// Package prompt holds the prompt text and tool definitions shared by
// the ask pipeline and the graph builder.
package prompt

import (
	"fmt"
	"strings"
	"unicode/utf8"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
)

// AnswerSystem frames the answering model as the platform assistant
// and pins it to the retrieved context.
const AnswerSystem = "You are a helpful assistant for a forex trading platform. " +
	"Answer questions using only the provided documentation context. " +
	"If the context does not contain the answer, say you do not know."

// CypherSystem frames the model for Cypher generation.
const CypherSystem = "You are a Cypher script expert for Neo4j databases."

// Answer builds the final question-answering prompt from the fused
// retrieval context.
func Answer(context, question string) string {
	return "Use the following content to answer the question:\n" +
		"Content:\n" + context + "\nQuestion: " + question
}

// CypherQuery asks for Cypher that would gather enough graph data to
// answer the question.
func CypherQuery(schema, question string) string {
	return fmt.Sprintf("Given a neo4j schema, create a cypher query that would give you "+
		"as much information as you need to answer the following question\n"+
		"Neo4j schema:\n%s\nQuestion: %s", schema, question)
}

// ExtractGraph asks for Cypher that creates the entities and
// relationships found in a documentation chunk.
func ExtractGraph(schema, chunk string) string {
	return fmt.Sprintf("Given a markdown document, extract entities and relationships "+
		"and create a syntactically correct Cypher query to create them. "+
		"Make as many tool calls as you can\n"+
		"Here is the schema information\n%s\nHere is the markdown document\n%s", schema, chunk)
}

// ContextBlock joins retrieved texts with separators and truncates the
// block at budget bytes so the prompt stays inside the model's window.
// A non-positive budget means no limit.
func ContextBlock(texts []string, budget int) string {
	var b strings.Builder
	for _, text := range texts {
		if text == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n---\n")
		}
		b.WriteString(text)
		if budget > 0 && b.Len() >= budget {
			break
		}
	}

	out := b.String()
	if budget > 0 && len(out) > budget {
		cut := budget
		// Never slice through a multi-byte sequence.
		for cut > 0 && !utf8.RuneStart(out[cut]) {
			cut--
		}
		out = out[:cut]
	}
	return out
}

// CypherTool is the function definition the models call to hand back
// generated Cypher.
func CypherTool() openai.Tool {
	cypherFunction := openai.FunctionDefinition{
		Name:        "create_cypher_query",
		Description: "Generate a Cypher query for Neo4j",
		Parameters: jsonschema.Definition{
			Type: jsonschema.Object,
			Properties: map[string]jsonschema.Definition{
				"queries": {
					Type:        jsonschema.Array,
					Description: "List of cypher queries to execute",
					Items: &jsonschema.Definition{
						Type: jsonschema.String,
					},
				},
			},
			Required: []string{"queries"},
		},
	}

	return openai.Tool{
		Type:     openai.ToolTypeFunction,
		Function: &cypherFunction,
	}
}
