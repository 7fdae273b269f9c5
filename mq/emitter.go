package mq

import (
	"context"
	"encoding/json"
	"log"

	"evently/rdx"
)

const channel = "indexing-events"

// Index represents an indexing-related message to be emitted.
type Index struct {
	EntityType string `json:"entity_type"`
	Method     string `json:"method"`
	EntityId   string `json:"entity_id"`
}

// Emitter publishes entity-change events to redis for the indexing worker.
type Emitter struct {
	cache *rdx.Cache
}

func NewEmitter(cache *rdx.Cache) *Emitter {
	return &Emitter{cache: cache}
}

// Emit publishes an indexing event; failures are logged and dropped, a
// missed index entry must never fail the request that caused it.
func (e *Emitter) Emit(ctx context.Context, eventName string, content Index) {
	data, err := json.Marshal(content)
	if err != nil {
		log.Printf("[Emit] Failed to marshal event content: %v", err)
		return
	}

	if err := e.cache.Conn.Publish(ctx, channel, data).Err(); err != nil {
		log.Printf("[Emit] Failed to publish %s event to Redis: %v", eventName, err)
	}
}

// StartIndexingWorker consumes indexing events and maintains the redis
// search keys for events. Runs until ctx is cancelled.
func (e *Emitter) StartIndexingWorker(ctx context.Context) {
	sub := e.cache.Conn.Subscribe(ctx, channel)
	ch := sub.Channel()

	log.Println("[IndexingWorker] Listening for indexing events...")

	for {
		select {
		case <-ctx.Done():
			sub.Close()
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var event Index
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				log.Printf("[IndexingWorker] Failed to parse event: %v", err)
				continue
			}

			key := "index:" + event.EntityType + ":" + event.EntityId
			switch event.Method {
			case "DELETE":
				e.cache.Del(ctx, key)
			default:
				if err := e.cache.Conn.Set(ctx, key, msg.Payload, 0).Err(); err != nil {
					log.Printf("[IndexingWorker] index write error: %v", err)
				}
			}
		}
	}
}
