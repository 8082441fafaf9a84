// Package main provides the eventbusctl CLI for operating the event
// bus topics.
//
// Usage:
//
//	eventbusctl topics ensure --brokers localhost:9092
//	eventbusctl dlq tail --brokers localhost:9092
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Sokol111/wallet-eventbus/pkg/events"
	"github.com/Sokol111/wallet-eventbus/pkg/kafka/admin"
	"github.com/Sokol111/wallet-eventbus/pkg/kafka/config"
	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "eventbusctl",
		Short:   "Operate the domain event bus",
		Version: version,
	}

	rootCmd.AddCommand(newTopicsCmd())
	rootCmd.AddCommand(newDLQCmd())

	return rootCmd
}

func newTopicsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "topics",
		Short: "Manage event topics",
	}
	cmd.AddCommand(newTopicsEnsureCmd())
	return cmd
}

func newTopicsEnsureCmd() *cobra.Command {
	var brokers string
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "ensure",
		Short: "Create all event topics if they do not exist",
		Long: `Create every event topic with the standard settings
(3 partitions, 7 day retention). Topics that already exist are left
untouched, so the command is safe to run on every deploy.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTopicsEnsure(brokers, timeout)
		},
	}

	cmd.Flags().StringVarP(&brokers, "brokers", "b", "localhost:9092", "Kafka bootstrap servers")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "Time to wait for topic creation")

	return cmd
}

func runTopicsEnsure(brokers string, timeout time.Duration) error {
	log, err := zap.NewDevelopment()
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	a, err := admin.New(config.Config{Brokers: brokers}, log)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := a.EnsureTopics(ctx); err != nil {
		return err
	}

	fmt.Printf("ensured %d topics\n", len(events.AllTopics()))
	return nil
}

func newDLQCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dlq",
		Short: "Inspect the dead-letter topic",
	}
	cmd.AddCommand(newDLQTailCmd())
	return cmd
}

func newDLQTailCmd() *cobra.Command {
	var brokers string
	var group string
	var fromBeginning bool

	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Print dead-lettered events as they arrive",
		Long: `Follow the dead-letter topic and print each record as
indented JSON. Offsets are never committed, so tailing does not
interfere with other consumers. Stop with Ctrl-C.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDLQTail(brokers, group, fromBeginning)
		},
	}

	cmd.Flags().StringVarP(&brokers, "brokers", "b", "localhost:9092", "Kafka bootstrap servers")
	cmd.Flags().StringVarP(&group, "group", "g", "eventbusctl-dlq-tail", "Consumer group id")
	cmd.Flags().BoolVar(&fromBeginning, "from-beginning", false, "Start from the oldest retained record")

	return cmd
}

func runDLQTail(brokers, group string, fromBeginning bool) error {
	offsetReset := "latest"
	if fromBeginning {
		offsetReset = "earliest"
	}

	consumer, err := kafka.NewConsumer(&kafka.ConfigMap{
		"bootstrap.servers":  brokers,
		"group.id":           group,
		"enable.auto.commit": false,
		"auto.offset.reset":  offsetReset,
	})
	if err != nil {
		return fmt.Errorf("creating kafka consumer: %w", err)
	}
	defer consumer.Close()

	if err := consumer.SubscribeTopics([]string{events.TopicDeadLetter}, nil); err != nil {
		return fmt.Errorf("subscribing to %s: %w", events.TopicDeadLetter, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(os.Stderr, "tailing %s, press Ctrl-C to stop\n", events.TopicDeadLetter)

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		msg, err := consumer.ReadMessage(time.Second)
		if err != nil {
			var kafkaErr kafka.Error
			if errors.As(err, &kafkaErr) && kafkaErr.IsTimeout() {
				continue
			}
			fmt.Fprintf(os.Stderr, "read error: %v\n", err)
			continue
		}

		printRecord(msg)
	}
}

func printRecord(msg *kafka.Message) {
	fmt.Printf("--- partition=%d offset=%d key=%s\n",
		msg.TopicPartition.Partition,
		msg.TopicPartition.Offset,
		string(msg.Key))

	var pretty map[string]any
	if err := json.Unmarshal(msg.Value, &pretty); err != nil {
		fmt.Println(string(msg.Value))
		return
	}

	out, err := json.MarshalIndent(pretty, "", "  ")
	if err != nil {
		fmt.Println(string(msg.Value))
		return
	}
	fmt.Println(string(out))
}
