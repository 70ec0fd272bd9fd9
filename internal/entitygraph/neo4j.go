// Package entitygraph mirrors client-linking decisions into a property
// graph: each Client node links to the Meeting and ChatRoom nodes it has
// been associated with. Both ingestion paths write to the graph; the
// retrieval engine does not read from it. It exists so a future
// relationship-aware retrieval mode has ingest-time data to build on.
package entitygraph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v6/neo4j"

	"github.com/dkoraitest/consultant-copilot/internal/types/interfaces"
)

// Graph implements interfaces.EntityGraph over a neo4j driver.
type Graph struct {
	driver neo4j.Driver
}

var _ interfaces.EntityGraph = (*Graph)(nil)

// New connects to uri and verifies the credentials before returning.
func New(uri, username, password string) (*Graph, error) {
	driver, err := neo4j.NewDriver(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("create neo4j driver: %w", err)
	}
	if err := driver.VerifyAuthentication(context.Background(), nil); err != nil {
		return nil, fmt.Errorf("verify neo4j credentials: %w", err)
	}
	return &Graph{driver: driver}, nil
}

func (g *Graph) LinkClientToMeeting(ctx context.Context, clientID, meetingID string) error {
	session := g.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		query := `
			MERGE (c:Client {id: $clientID})
			MERGE (m:Meeting {id: $meetingID})
			MERGE (c)-[:DISCUSSED_IN]->(m)
		`
		_, err := tx.Run(ctx, query, map[string]interface{}{"clientID": clientID, "meetingID": meetingID})
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("link client %q to meeting %q: %w", clientID, meetingID, err)
	}
	return nil
}

func (g *Graph) LinkClientToChatRoom(ctx context.Context, clientID string, chatExternalID int64) error {
	session := g.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		query := `
			MERGE (c:Client {id: $clientID})
			MERGE (r:ChatRoom {externalId: $chatExternalID})
			MERGE (c)-[:MESSAGED_IN]->(r)
		`
		_, err := tx.Run(ctx, query, map[string]interface{}{"clientID": clientID, "chatExternalID": chatExternalID})
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("link client %q to chat room %d: %w", clientID, chatExternalID, err)
	}
	return nil
}

// Close releases the underlying driver.
func (g *Graph) Close(ctx context.Context) error {
	return g.driver.Close(ctx)
}
