package nats

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/abgdnv/kasir/pkg/messaging"
	"github.com/abgdnv/kasir/pkg/messaging/events"
	"github.com/google/uuid"
	natsgo "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/nats"
)

// skipIntegrationTests is the environment variable that controls whether to skip integration tests.
const skipIntegrationTests = "KASIR_SKIP_INTEGRATION_TESTS"
const natsImg = "nats:2.11.6-alpine"

type PublisherSuite struct {
	suite.Suite
	ctx           context.Context
	natsContainer *nats.NATSContainer
	nc            *natsgo.Conn
	js            jetstream.JetStream
}

func (s *PublisherSuite) SetupSuite() {
	s.ctx = context.Background()
	var err error

	s.natsContainer, err = nats.Run(s.ctx, natsImg)
	require.NoError(s.T(), err, "Failed to run NATS container")

	natsURL, err := s.natsContainer.ConnectionString(s.ctx)
	require.NoError(s.T(), err)
	s.nc, err = NewClient(natsURL, 5*time.Second)
	require.NoError(s.T(), err, "Failed to connect to NATS")
	s.js, err = NewJetStreamContext(s.nc)
	require.NoError(s.T(), err, "Failed to get JetStream context")
}

func (s *PublisherSuite) TearDownSuite() {
	if s.nc != nil {
		s.nc.Close()
	}
	if err := testcontainers.TerminateContainer(s.natsContainer); err != nil {
		s.T().Logf("Failed to terminate NATS container: %v", err)
	}
}

func TestPublisherIntegration(t *testing.T) {
	if os.Getenv(skipIntegrationTests) == "1" {
		t.Skip("Skipping integration tests based on " + skipIntegrationTests + " env var")
	}
	suite.Run(t, new(PublisherSuite))
}

func (s *PublisherSuite) TestPublish_StoresEventsOnce() {
	// given
	streamName := "PRODUCTS-" + uuid.NewString()
	s.Require().NoError(EnsureStream(s.ctx, s.js, streamName, messaging.ProductsSubjects))
	// a second call updates the existing stream
	s.Require().NoError(EnsureStream(s.ctx, s.js, streamName, messaging.ProductsSubjects))
	publisher := NewPublisher(s.js)
	created := events.ProductEvent{EventID: uuid.NewString(), Kind: events.KindCreated, ProductID: 1, Name: "Pensil", Price: "2500", Cost: "1500", Stock: 40}
	deleted := events.ProductEvent{EventID: uuid.NewString(), Kind: events.KindDeleted, ProductID: 1}

	// when the created event is sent twice
	s.Require().NoError(publisher.Publish(s.ctx, created))
	s.Require().NoError(publisher.Publish(s.ctx, created))
	s.Require().NoError(publisher.Publish(s.ctx, deleted))

	// then the duplicate is dropped
	stream, err := s.js.Stream(s.ctx, streamName)
	s.Require().NoError(err)
	info, err := stream.Info(s.ctx)
	s.Require().NoError(err)
	s.Equal(uint64(2), info.State.Msgs)

	msg, err := stream.GetLastMsgForSubject(s.ctx, messaging.ProductsDeletedSubject)
	s.Require().NoError(err)
	s.Contains(string(msg.Data), `"kind":"deleted"`)
}

func (s *PublisherSuite) TestEnsureStream_RequiresSubjects() {
	err := EnsureStream(s.ctx, s.js, "EMPTY-"+uuid.NewString())

	s.Error(err)
}
