package mqtt

import (
	"context"
	"testing"

	"heat-alert-service/internal/ingest"
	"heat-alert-service/internal/logging"
)

type stubIngester struct {
	sources []string
	raws    []string
}

func (s *stubIngester) IngestJSON(_ context.Context, raw []byte, source string) (ingest.Result, error) {
	s.sources = append(s.sources, source)
	s.raws = append(s.raws, string(raw))
	return ingest.Result{}, nil
}

type stubMessage struct {
	topic   string
	payload []byte
}

func (m stubMessage) Duplicate() bool   { return false }
func (m stubMessage) Qos() byte         { return subscribeQoS }
func (m stubMessage) Retained() bool    { return false }
func (m stubMessage) Topic() string     { return m.topic }
func (m stubMessage) MessageID() uint16 { return 1 }
func (m stubMessage) Payload() []byte   { return m.payload }
func (m stubMessage) Ack()              {}

func TestMessageHandlerForwardsPayload(t *testing.T) {
	stub := &stubIngester{}
	s := NewSubscriber("tcp://localhost:1883", "sensors/heat", stub, logging.NewDiscard())
	handler := s.messageHandler()
	handler(nil, stubMessage{topic: "sensors/heat", payload: []byte(`{"temperature":88,"moisture":5}`)})

	if len(stub.raws) != 1 || stub.sources[0] != "mqtt" {
		t.Fatalf("unexpected calls: %+v", stub)
	}
	if stub.raws[0] != `{"temperature":88,"moisture":5}` {
		t.Fatalf("payload altered: %s", stub.raws[0])
	}
}
