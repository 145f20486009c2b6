// Package graph is the Neo4j access layer for the documentation
// knowledge graph. Every query that carries user input goes through
// the driver's parameter map; query text is never built from it.
package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Entity is a graph node matched by a term lookup.
type Entity struct {
	ID     string
	Name   string
	Labels []string
}

// Triple is one relationship rendered for prompt context.
type Triple struct {
	Source string
	Rel    string
	Target string
}

func (t Triple) String() string {
	return fmt.Sprintf("%s -[%s]-> %s", t.Source, t.Rel, t.Target)
}

// Store wraps a Neo4j driver with per-call sessions.
type Store struct {
	driver   neo4j.DriverWithContext
	database string
}

// Connect builds a driver and verifies connectivity before returning,
// so commands fail at startup rather than mid-pipeline.
func Connect(ctx context.Context, uri, user, password, database string) (*Store, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, fmt.Errorf("creating neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		return nil, fmt.Errorf("verifying neo4j connectivity: %w", err)
	}
	if database == "" {
		database = "neo4j"
	}
	return &Store{driver: driver, database: database}, nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

func (s *Store) readSession(ctx context.Context) neo4j.SessionWithContext {
	return s.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: s.database,
	})
}

// Schema renders db.schema.visualization() as text for prompts.
func (s *Store) Schema(ctx context.Context) (string, error) {
	session := s.readSession(ctx)
	defer session.Close(ctx)

	result, err := session.Run(ctx, "CALL db.schema.visualization()", nil)
	if err != nil {
		return "", fmt.Errorf("running schema query: %w", err)
	}
	records, err := result.Collect(ctx)
	if err != nil {
		return "", fmt.Errorf("collecting schema results: %w", err)
	}

	var b strings.Builder
	for _, record := range records {
		nodes, _ := record.Get("nodes")
		relationships, _ := record.Get("relationships")

		b.WriteString("Nodes:\n")
		if list, ok := nodes.([]interface{}); ok {
			for _, node := range list {
				b.WriteString(fmt.Sprintf("%+v\n", node))
			}
		}

		b.WriteString("\nRelationships:\n")
		if list, ok := relationships.([]interface{}); ok {
			for _, rel := range list {
				b.WriteString(fmt.Sprintf("%+v\n", rel))
			}
		}
	}
	return b.String(), nil
}

// SearchEntities finds nodes whose id or name contains term,
// case-insensitively. The term travels as a query parameter.
func (s *Store) SearchEntities(ctx context.Context, term string, limit int) ([]Entity, error) {
	if limit <= 0 {
		limit = 10
	}
	session := s.readSession(ctx)
	defer session.Close(ctx)

	result, err := session.Run(ctx, `
		MATCH (n)
		WHERE toLower(coalesce(n.id, '')) CONTAINS toLower($term)
		   OR toLower(coalesce(n.name, '')) CONTAINS toLower($term)
		RETURN coalesce(n.id, '') AS id,
		       coalesce(n.name, '') AS name,
		       labels(n) AS labels
		LIMIT $limit`,
		map[string]any{"term": term, "limit": limit})
	if err != nil {
		return nil, fmt.Errorf("searching entities for %q: %w", term, err)
	}

	var entities []Entity
	for result.Next(ctx) {
		record := result.Record()
		e := Entity{
			ID:   stringValue(record.AsMap()["id"]),
			Name: stringValue(record.AsMap()["name"]),
		}
		if labels, ok := record.AsMap()["labels"].([]interface{}); ok {
			for _, l := range labels {
				e.Labels = append(e.Labels, stringValue(l))
			}
		}
		entities = append(entities, e)
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("iterating entity results: %w", err)
	}
	return entities, nil
}

// Neighborhood returns the relationships around the entity with the
// given id, keeping the stored direction.
func (s *Store) Neighborhood(ctx context.Context, id string, limit int) ([]Triple, error) {
	if limit <= 0 {
		limit = 25
	}
	session := s.readSession(ctx)
	defer session.Close(ctx)

	result, err := session.Run(ctx, `
		MATCH (n {id: $id})-[r]-(m)
		RETURN coalesce(n.id, n.name, '') AS self,
		       type(r) AS rel,
		       coalesce(m.id, m.name, '') AS other,
		       startNode(r) = n AS outgoing
		LIMIT $limit`,
		map[string]any{"id": id, "limit": limit})
	if err != nil {
		return nil, fmt.Errorf("expanding neighborhood of %q: %w", id, err)
	}

	var triples []Triple
	for result.Next(ctx) {
		m := result.Record().AsMap()
		t := Triple{
			Source: stringValue(m["self"]),
			Rel:    stringValue(m["rel"]),
			Target: stringValue(m["other"]),
		}
		if outgoing, ok := m["outgoing"].(bool); ok && !outgoing {
			t.Source, t.Target = t.Target, t.Source
		}
		triples = append(triples, t)
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("iterating neighborhood results: %w", err)
	}
	return triples, nil
}

// RunQuery executes LLM-generated Cypher read-only and renders the
// records as indented JSON for prompt context.
func (s *Store) RunQuery(ctx context.Context, query string) (string, error) {
	session := s.readSession(ctx)
	defer session.Close(ctx)

	result, err := session.Run(ctx, query, nil)
	if err != nil {
		return "", fmt.Errorf("executing query: %w", err)
	}

	var records []map[string]interface{}
	for result.Next(ctx) {
		record := result.Record()
		recordMap := make(map[string]interface{})
		for _, key := range record.Keys {
			value, _ := record.Get(key)
			recordMap[key] = value
		}
		records = append(records, recordMap)
	}
	if err := result.Err(); err != nil {
		return "", fmt.Errorf("iterating results: %w", err)
	}

	jsonData, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling results to JSON: %w", err)
	}
	return string(jsonData), nil
}

// Write executes a mutating statement inside a managed transaction.
func (s *Store) Write(ctx context.Context, query string, params map[string]any) error {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: s.database,
	})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		_, err := tx.Run(ctx, query, params)
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("writing to graph: %w", err)
	}
	return nil
}

func stringValue(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}
