package consumer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Sokol111/wallet-eventbus/pkg/kafka/config"
	"github.com/Sokol111/wallet-eventbus/pkg/kafka/producer"
	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// kafkaConsumer is the subset of *kafka.Consumer the package needs.
type kafkaConsumer interface {
	SubscribeTopics(topics []string, rebalanceCb kafka.RebalanceCb) error
	ReadMessage(timeout time.Duration) (*kafka.Message, error)
	StoreMessage(m *kafka.Message) ([]kafka.TopicPartition, error)
	Commit() ([]kafka.TopicPartition, error)
	Close() error
}

var (
	ErrNoHandlers     = errors.New("no handlers registered")
	ErrAlreadyStarted = errors.New("consumer already started")
	ErrStopped        = errors.New("consumer stopped")
)

// Builder assembles a Consumer. Handlers must be registered here,
// before Subscribe: a Consumer has no registration methods, so an event
// can never arrive before its handlers are in place.
type Builder struct {
	conf        config.Config
	registry    *registry
	dlqProducer producer.Producer
	tracer      MessageTracer
	log         *zap.Logger
	newClient   func(config.Config) (kafkaConsumer, error)
	subscribed  bool
}

// NewBuilder creates a Builder over the dead-letter producer. The same
// producer instance the application publishes with is fine here; the
// router only uses its raw publish path.
func NewBuilder(conf config.Config, dlqProducer producer.Producer, log *zap.Logger) *Builder {
	log = log.With(
		zap.String("component", "consumer"),
		zap.String("group_id", conf.Consumer.GroupID))

	return &Builder{
		conf:        conf,
		registry:    newRegistry(log),
		dlqProducer: dlqProducer,
		tracer:      newMessageTracer(otel.GetTracerProvider()),
		log:         log,
		newClient:   newConsumerClient,
	}
}

// WithTracerProvider overrides the global tracer provider.
func (b *Builder) WithTracerProvider(tp trace.TracerProvider) *Builder {
	b.tracer = newMessageTracer(tp)
	return b
}

// Register adds a handler. Names need not be unique: a duplicate only
// makes dead-letter attribution ambiguous, so it is logged and both
// handlers run.
func (b *Builder) Register(h EventHandler) *Builder {
	b.registry.add(h)
	return b
}

// Subscribe creates the group member, subscribes it to the union of the
// registered handlers' topics, and returns the Consumer. The Builder is
// spent afterwards.
func (b *Builder) Subscribe() (*Consumer, error) {
	if b.subscribed {
		return nil, errors.New("builder already used")
	}
	if b.registry.empty() {
		return nil, ErrNoHandlers
	}
	b.subscribed = true

	client, err := b.newClient(b.conf)
	if err != nil {
		return nil, fmt.Errorf("creating kafka consumer: %w", err)
	}

	topics := b.registry.topics()
	b.log.Info("subscribing to topics", zap.Strings("topics", topics))

	rebalanceCb := func(c *kafka.Consumer, event kafka.Event) error {
		switch ev := event.(type) {
		case kafka.AssignedPartitions:
			logPartitionEvent(b.log, "partitions assigned", ev.Partitions)
		case kafka.RevokedPartitions:
			logPartitionEvent(b.log, "partitions revoked", ev.Partitions)
		}
		return nil
	}

	if err := client.SubscribeTopics(topics, rebalanceCb); err != nil {
		closeErr := client.Close()
		return nil, errors.Join(fmt.Errorf("subscribing to topics: %w", err), closeErr)
	}

	dlq := newDeadLetterRouter(
		b.dlqProducer,
		b.conf.Consumer.DLQTopic,
		b.conf.Consumer.DLQMaxRetries,
		b.tracer,
		b.log,
	)

	return &Consumer{
		client:   client,
		conf:     b.conf.Consumer,
		registry: b.registry,
		dlq:      dlq,
		tracer:   b.tracer,
		log:      b.log,
	}, nil
}

// newConsumerClient creates the librdkafka consumer. Offsets are
// auto-committed but only after the dispatcher explicitly stores them,
// so a message is never committed before it reaches a terminal outcome.
func newConsumerClient(conf config.Config) (kafkaConsumer, error) {
	return kafka.NewConsumer(&kafka.ConfigMap{
		"bootstrap.servers":        conf.Brokers,
		"group.id":                 conf.Consumer.GroupID,
		"enable.auto.commit":       true,
		"enable.auto.offset.store": false,
		"auto.commit.interval.ms":  3000,
		"auto.offset.reset":        conf.Consumer.AutoOffsetReset,
	})
}

type consumerState int

const (
	stateSubscribed consumerState = iota
	stateRunning
	stateStopped
)

// Consumer owns one group member and the reader/dispatcher pair that
// drains it. Start and Stop are safe to call from any goroutine; Stop
// is terminal.
type Consumer struct {
	client   kafkaConsumer
	conf     config.ConsumerConfig
	registry *registry
	dlq      DeadLetterRouter
	tracer   MessageTracer
	log      *zap.Logger

	mu     sync.Mutex
	state  consumerState
	cancel context.CancelFunc
	group  *errgroup.Group
}

// Start launches the poll and dispatch loops.
func (c *Consumer) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case stateRunning:
		return ErrAlreadyStarted
	case stateStopped:
		return ErrStopped
	}

	ctx, cancel := context.WithCancel(context.Background())
	group, ctx := errgroup.WithContext(ctx)

	messages := make(chan *kafka.Message, c.conf.ChannelBufferSize)
	retry := newRetryExecutor(c.conf.MaxRetryAttempts, c.conf.InitialBackoff, c.conf.MaxBackoff, c.log)

	r := newReader(c.client, messages, c.conf.PollTimeout, c.log)
	d := newDispatcher(messages, c.registry, c.client, c.dlq, retry, c.tracer, c.log)

	group.Go(func() error { return r.run(ctx) })
	group.Go(func() error { return d.run(ctx) })

	c.cancel = cancel
	c.group = group
	c.state = stateRunning

	c.log.Info("consumer started",
		zap.Strings("topics", c.registry.topics()),
		zap.Int("handlers", len(c.registry.handlers)))
	return nil
}

// Stop shuts down the loops, commits stored offsets one last time, and
// closes the group member. The consumer cannot be restarted.
func (c *Consumer) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == stateStopped {
		return nil
	}

	if c.state == stateRunning {
		c.cancel()
		if err := c.group.Wait(); err != nil {
			c.log.Error("consumer loop exited with error", zap.Error(err))
		}
	}
	c.state = stateStopped

	c.finalCommit()

	c.log.Info("closing kafka consumer")
	return c.client.Close()
}

// finalCommit flushes offsets stored since the last auto-commit tick.
func (c *Consumer) finalCommit() {
	if _, err := c.client.Commit(); err != nil {
		var kafkaErr kafka.Error
		if !errors.As(err, &kafkaErr) || kafkaErr.Code() != kafka.ErrNoOffset {
			c.log.Warn("failed to commit offsets on shutdown", zap.Error(err))
		}
		return
	}
	c.log.Debug("final commit successful")
}

func logPartitionEvent(log *zap.Logger, event string, partitions []kafka.TopicPartition) {
	if len(partitions) == 0 {
		log.Warn(event + ": no partitions")
		return
	}

	partitionIDs := make([]int32, len(partitions))
	for idx, partition := range partitions {
		partitionIDs[idx] = partition.Partition
	}

	log.Info(event,
		zap.Int("partition_count", len(partitions)),
		zap.Int32s("partitions", partitionIDs))
}
