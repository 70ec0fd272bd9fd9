// Package keywordindex is the optional secondary retriever consulted
// alongside vector search when enabled by configuration; hits the vector
// search did not already find are appended after the chat-side vector
// results. Disabled by
// default, it never changes the retrieval engine's core contract.
package keywordindex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/elastic/go-elasticsearch/v8"

	"github.com/dkoraitest/consultant-copilot/internal/types/interfaces"
)

// Index implements interfaces.KeywordIndex over an Elasticsearch v8 client,
// matching the query against the chat_messages index's "content" field.
type Index struct {
	client *elasticsearch.Client
	index  string
}

var _ interfaces.KeywordIndex = (*Index)(nil)

// New builds an Index against the given Elasticsearch URL.
func New(url, index string) (*Index, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{url}})
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}
	if index == "" {
		index = "chat_messages"
	}
	return &Index{client: client, index: index}, nil
}

type searchHit struct {
	Source struct {
		MessageID string `json:"message_id"`
	} `json:"_source"`
}

type searchResponse struct {
	Hits struct {
		Hits []searchHit `json:"hits"`
	} `json:"hits"`
}

// SearchChats runs a match query against the chat message content field and
// returns the matched message ids, most relevant first.
func (i *Index) SearchChats(ctx context.Context, query string, limit int) ([]string, error) {
	body := fmt.Sprintf(`{"query": {"match": {"content": %s}}, "size": %s}`,
		mustMarshal(query), strconv.Itoa(limit))

	res, err := i.client.Search(
		i.client.Search.WithContext(ctx),
		i.client.Search.WithIndex(i.index),
		i.client.Search.WithBody(bytes.NewReader([]byte(body))),
	)
	if err != nil {
		return nil, fmt.Errorf("keyword search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("keyword search failed: %s", res.String())
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode keyword search response: %w", err)
	}

	ids := make([]string, len(parsed.Hits.Hits))
	for idx, hit := range parsed.Hits.Hits {
		ids[idx] = hit.Source.MessageID
	}
	return ids, nil
}

func mustMarshal(s string) string {
	data, _ := json.Marshal(s)
	return string(data)
}
